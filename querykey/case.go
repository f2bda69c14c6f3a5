package querykey

import (
	"strings"
	"unicode"
)

// normalizeResource keeps resource names snake_case so prefix invalidation
// works the same no matter how callers spell them ("WalletHistory",
// "wallet-history", "wallet_history").
func normalizeResource(s string) string {
	return toSnake(strings.TrimSpace(s))
}

// toSnake converts the provided string to snake_case using ASCII-aware rules.
// Punctuation collapses to a single underscore; a separator in a resource name
// would otherwise break segment-aware prefix matching.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if (unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower) && !lastUnderscore {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r):
			b.WriteRune(r)
			lastUnderscore = false

		case unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}
