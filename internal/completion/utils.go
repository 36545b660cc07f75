package completion

import "strings"

// EstimateTokens approximates the token count of a text as 1.3 tokens
// per word. Used only when the upstream response omits usage data.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * 1.3)
}
