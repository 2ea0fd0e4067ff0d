package inventory

import (
	"fmt"

	"github.com/auto-dns/portainer-dns-sync/internal/apiclient"
)

// FetchError is returned when the inventory API answers with anything but 200.
type FetchError struct {
	StatusCode int
	Body       string
}

func NewFetchError(statusCode int, body []byte) *FetchError {
	return &FetchError{StatusCode: statusCode, Body: apiclient.Snippet(body)}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch endpoints: status %d: %s", e.StatusCode, e.Body)
}
