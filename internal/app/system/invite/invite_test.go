package invite

import (
	"strings"
	"testing"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"petroulis family", "petroulis-family"},
		{"  Petroulis   Family  ", "petroulis-family"},
		{"PETROULIS-FAMILY", "petroulis-family"},
		{"a--b---c", "a-b-c"},
		{"--home--", "home"},
		{"Σπίτι μας", ""}, // non-ASCII strips away entirely
		{"home!@#2024", "home2024"},
		{"", ""},
		{"   ", ""},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeCode(tt.input); got != tt.want {
				t.Errorf("NormalizeCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCode_Idempotent(t *testing.T) {
	inputs := []string{"petroulis family", "A--B", "home!2024", "x y z", "--a--"}
	for _, in := range inputs {
		once := NormalizeCode(in)
		twice := NormalizeCode(once)
		if once != twice {
			t.Errorf("NormalizeCode not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeCode_SimpleInputsYieldValidOrEmpty(t *testing.T) {
	// Strings of letters, digits, spaces and hyphens must normalize to a
	// valid code or to the empty string.
	inputs := []string{
		"abc", "a b c", "A-B-C", "---", "  ", "12 34", "x", "hy-phen-ated words",
	}
	for _, in := range inputs {
		got := NormalizeCode(in)
		if got == "" {
			continue
		}
		if !codeRe.MatchString(got) {
			t.Errorf("NormalizeCode(%q) = %q does not match the segment rule", in, got)
		}
	}
}

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"petroulis-family", true},
		{"abc", true},
		{"ab", false},             // too short
		{"a-b", true},
		{"-abc", false},           // leading hyphen
		{"abc-", false},           // trailing hyphen
		{"a--b", false},           // double hyphen
		{"ABC", false},            // not normalized
		{"home-x7k2", true},
		{strings.Repeat("a", 32), true},
		{strings.Repeat("a", 33), false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := IsValidCode(tt.code); got != tt.want {
				t.Errorf("IsValidCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestProposeCode(t *testing.T) {
	names := []string{
		"Petros", "home", "", "   ", "Σπίτι", "A Very Long Household Name That Exceeds The Budget",
		"UPPER case", "dash--heavy--name",
	}
	for _, name := range names {
		for i := 0; i < 20; i++ {
			code := ProposeCode(name)
			if !IsValidCode(code) {
				t.Fatalf("ProposeCode(%q) = %q is not a valid code", name, code)
			}
			if len(code) > MaxLen {
				t.Fatalf("ProposeCode(%q) = %q exceeds %d chars", name, code, MaxLen)
			}
		}
	}
}

func TestProposeCode_Varies(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		seen[ProposeCode("petros")] = true
	}
	if len(seen) < 2 {
		t.Error("expected random suffixes to vary across proposals")
	}
}

func TestFallbackCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code := FallbackCode()
		if !IsValidCode(code) {
			t.Fatalf("FallbackCode() = %q is not a valid code", code)
		}
		if !strings.HasPrefix(code, "home-") {
			t.Fatalf("FallbackCode() = %q should start with home-", code)
		}
	}
}

func TestRandomSuffix(t *testing.T) {
	s := RandomSuffix(4)
	if len(s) != 4 {
		t.Fatalf("RandomSuffix(4) length = %d", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(suffixChars, r) {
			t.Fatalf("RandomSuffix produced unexpected rune %q", r)
		}
	}
}
