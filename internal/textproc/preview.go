package textproc

import "unicode/utf8"

const ellipsis = "..."

// Preview shortens s to at most maxBytes bytes of UTF-8, ending in "..."
// when it had to cut. Runes are never split.
func Preview(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	budget := maxBytes - len(ellipsis)
	if budget <= 0 {
		return ellipsis[:max(maxBytes, 0)]
	}
	cut := 0
	for cut < len(s) {
		_, size := utf8.DecodeRuneInString(s[cut:])
		if cut+size > budget {
			break
		}
		cut += size
	}
	return s[:cut] + ellipsis
}

// Truncate limits s to maxRunes characters, replacing the tail with "..."
// when it is too long.
func Truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	if maxRunes <= len(ellipsis) {
		return ellipsis[:max(maxRunes, 0)]
	}
	runes := []rune(s)
	return string(runes[:maxRunes-len(ellipsis)]) + ellipsis
}
