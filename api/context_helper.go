package api

import (
	"context"
	"net/http"
	"time"
)

// QueryTimeout is the default timeout for the storage work behind a request
const QueryTimeout = 10 * time.Second

// WithQueryTimeout derives the storage context for a request. The request's
// own cancellation still applies.
func WithQueryTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	parent := context.Background()
	if r != nil {
		parent = r.Context()
	}
	return context.WithTimeout(parent, QueryTimeout)
}
