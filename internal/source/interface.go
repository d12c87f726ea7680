package source

import "context"

// Listing represents one candidate guest-blog site from a listing source.
type Listing struct {
	SiteURL        string // Raw site reference as typed in the source data
	PublisherName  string
	PublisherEmail string
	Notes          string
}

// Source defines the interface for candidate-listing sources.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	GetSourceID() string

	// FetchBatch fetches a batch of listings starting from the given cursor.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - cursor: pagination cursor or empty for first page.
	//   - limit: maximum number of listings to fetch.
	// Returns:
	//   - listings: batch of candidate listings.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, cursor string, limit int) (listings []Listing, nextCursor string, err error)
}
