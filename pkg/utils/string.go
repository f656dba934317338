package utils

// Truncate cuts s to at most maxLen runes, ending a cut string with "…".
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 0 {
		return ""
	}
	return string(r[:maxLen-1]) + "…"
}
