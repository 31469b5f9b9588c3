package data

import (
	"context"
	"iter"
)

// pageSize is the number of nodes requested per connection page.
const pageSize = 100

// PageInfo mirrors the GraphQL pageInfo object.
type PageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// Page is one page of a GraphQL connection.
type Page[T any] struct {
	Nodes    []T
	PageInfo PageInfo
}

// FetchFunc fetches the page that starts after cursor (nil for the first page).
type FetchFunc[T any] func(ctx context.Context, after *string) (Page[T], error)

// Pages returns a lazy sequence of pages. A page is only fetched when the
// consumer asks for it, so breaking out of the loop issues no further requests.
//
// The sequence ends after a page with no nodes (even if the server claims
// more pages exist), after a page with hasNextPage=false or without an end
// cursor, or after the first error, which is yielded once with a zero page.
func Pages[T any](ctx context.Context, fetch FetchFunc[T]) iter.Seq2[Page[T], error] {
	return func(yield func(Page[T], error) bool) {
		var after *string
		for {
			page, err := fetch(ctx, after)
			if err != nil {
				yield(Page[T]{}, err)
				return
			}
			if len(page.Nodes) == 0 {
				return
			}
			if !yield(page, nil) {
				return
			}
			if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor == nil {
				return
			}
			after = page.PageInfo.EndCursor
		}
	}
}
