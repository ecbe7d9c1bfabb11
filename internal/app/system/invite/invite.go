// Package invite implements the invite-code rules: normalization, format
// validation, and proposal of fresh codes from a display name.
package invite

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	// MinLen and MaxLen bound a normalized code, inclusive.
	MinLen = 3
	MaxLen = 32

	// baseMax is the slug budget before the random suffix is appended.
	baseMax = 20

	suffixChars = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// codeRe: one or more lowercase-alphanumeric segments joined by single hyphens.
var codeRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9-]`)
	multiDashRe  = regexp.MustCompile(`-+`)
)

// NormalizeCode lowercases the input, turns internal whitespace into hyphens,
// strips everything outside [a-z0-9-], collapses repeated hyphens, and trims
// leading/trailing hyphens. Normalization is idempotent. The result is not
// guaranteed valid (it may be empty or too short/long); check IsValidCode.
func NormalizeCode(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = disallowedRe.ReplaceAllString(s, "")
	s = multiDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValidCode reports whether code is already normalized and well formed:
// lowercase-alphanumeric segments joined by single hyphens, length 3-32.
func IsValidCode(code string) bool {
	return len(code) >= MinLen && len(code) <= MaxLen && codeRe.MatchString(code)
}

// RandomSuffix returns n random lowercase-alphanumeric characters.
func RandomSuffix(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(suffixChars)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// degrade to a fixed character rather than panic mid-signup.
			b[i] = 'x'
			continue
		}
		b[i] = suffixChars[idx.Int64()]
	}
	return string(b)
}

// ProposeCode builds a candidate invite code from a display name: the
// normalized slug (or "home" when it normalizes away) truncated to 20
// characters, a hyphen, and a 4-character random suffix, capped at 32.
func ProposeCode(nameLike string) string {
	base := NormalizeCode(nameLike)
	if base == "" {
		base = "home"
	}
	if len(base) > baseMax {
		base = strings.Trim(base[:baseMax], "-")
	}
	code := base + "-" + RandomSuffix(4)
	if len(code) > MaxLen {
		code = code[:MaxLen]
	}
	return code
}

// FallbackCode is used when five collision probes failed to produce a valid
// candidate: slugified "home" plus a longer random suffix.
func FallbackCode() string {
	return NormalizeCode("home-" + RandomSuffix(6))
}
