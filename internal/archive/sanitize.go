package archive

import "strings"

// Characters that are unsafe in folder names on common filesystems and in
// object-storage keys. Control codes 0x00-0x1F are handled separately.
const unsafeFolderChars = `<>:"/\|?*`

const (
	folderNameMaxLen = 60
	fallbackFolder   = "unknown"
)

// Sanitize converts arbitrary external input (group display names, album
// IDs) into a segment safe to use as a single path element. Unsafe and
// control characters become "_", surrounding whitespace and trailing dots
// are trimmed, and the result is capped at folderNameMaxLen runes. Empty
// input collapses to the fallbackFolder literal.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r < 0x20 || strings.ContainsRune(unsafeFolderChars, r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	out = strings.TrimRight(out, ".")
	out = strings.TrimSpace(out)
	if out == "" {
		return fallbackFolder
	}
	runes := []rune(out)
	if len(runes) > folderNameMaxLen {
		// Re-trim so truncation cannot leave a trailing space or dot.
		out = strings.TrimRight(strings.TrimSpace(string(runes[:folderNameMaxLen])), ".")
		if out == "" {
			return fallbackFolder
		}
	}
	return out
}
