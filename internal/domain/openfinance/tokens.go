package openfinance

import "finsync/internal/domain/item"

// AccessTokens returns the access tokens of items in order.
func AccessTokens(items []*item.Item) []string {
	tokens := make([]string, 0, len(items))
	for _, it := range items {
		tokens = append(tokens, it.AccessToken)
	}
	return tokens
}
