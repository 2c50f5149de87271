package archive

import (
	"strings"
	"testing"
)

func TestSanitizeReplacesUnsafeCharacters(t *testing.T) {
	t.Parallel()

	got := Sanitize(`a<b>c:d"e/f\g|h?i*j`)
	if got != "a_b_c_d_e_f_g_h_i_j" {
		t.Fatalf("unexpected result: %q", got)
	}
	if strings.ContainsAny(got, unsafeFolderChars) {
		t.Fatalf("output still contains unsafe characters: %q", got)
	}
}

func TestSanitizeReplacesControlCharacters(t *testing.T) {
	t.Parallel()

	got := Sanitize("a\x00b\x1fc\nd")
	if got != "a_b_c_d" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizeFallback(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "...", "   ", " . . ", "\x00\x01"} {
		if got := Sanitize(input); got != "unknown" {
			t.Fatalf("Sanitize(%q) = %q, want unknown", input, got)
		}
	}
}

func TestSanitizeTrims(t *testing.T) {
	t.Parallel()

	if got := Sanitize("  Math Club.  "); got != "Math Club" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizeLengthBound(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	got := Sanitize(long)
	if len([]rune(got)) > folderNameMaxLen {
		t.Fatalf("result exceeds max length: %d", len([]rune(got)))
	}
	if got != strings.Repeat("x", folderNameMaxLen) {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Math Club",
		`a<b>c/d`,
		"  spaced  ",
		"trailing...",
		strings.Repeat("y", 100),
		strings.Repeat("z", 59) + ".",
		"",
	}
	for _, input := range inputs {
		once := Sanitize(input)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
