package shopify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the platform has no object for the lookup.
var ErrNotFound = errors.New("shopify: not found")

// TransportError is a non-2xx HTTP answer from the platform.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("shopify: unexpected status %d: %s", e.Status, e.Body)
}

// GraphQLErrorItem is one entry of a GraphQL "errors" array.
type GraphQLErrorItem struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// GraphQLError is a 200 response carrying a non-empty "errors" array.
type GraphQLError struct {
	Errors []GraphQLErrorItem
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msgs = append(msgs, item.Message)
	}
	return "shopify: graphql errors: " + strings.Join(msgs, "; ")
}

// UserError is a platform validation failure reported inside a mutation
// payload.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}
