package htmlsanitize_test

import (
	"testing"

	"github.com/exodologio/exodologio/internal/app/system/htmlsanitize"
)

func TestStrip_Empty(t *testing.T) {
	if got := htmlsanitize.Strip(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestStrip_PlainText(t *testing.T) {
	if got := htmlsanitize.Strip("Ενοίκιο Μαρτίου"); got != "Ενοίκιο Μαρτίου" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestStrip_RemovesTags(t *testing.T) {
	if got := htmlsanitize.Strip("<b>rent</b> March"); got != "rent March" {
		t.Errorf("expected tags removed, got %q", got)
	}
}

func TestStrip_RemovesScript(t *testing.T) {
	got := htmlsanitize.Strip(`groceries<script>alert('xss')</script>`)
	if got != "groceries" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestStrip_Trims(t *testing.T) {
	if got := htmlsanitize.Strip("  cash  "); got != "cash" {
		t.Errorf("expected trimmed text, got %q", got)
	}
}

func TestStripOneLine(t *testing.T) {
	got := htmlsanitize.StripOneLine("line one\nline two\r\nline three")
	if got != "line one line two line three" {
		t.Errorf("expected folded newlines, got %q", got)
	}
}
