package cache

import "fmt"

// Key builders keep every cache key under the tally: namespace so a shared
// Redis can be swept per concern with DeletePattern.

// CategoryListKey caches the category list visible to one user.
func CategoryListKey(userID string) string {
	return fmt.Sprintf("tally:categories:user:%s", userID)
}

// CategoryListPattern matches every cached category list.
func CategoryListPattern() string {
	return "tally:categories:user:*"
}

// QuoteKey caches the latest quote snapshot for one symbol.
func QuoteKey(symbol string) string {
	return fmt.Sprintf("tally:quote:%s", symbol)
}
