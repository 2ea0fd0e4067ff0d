package powerdns

import (
	"errors"
	"fmt"

	"github.com/auto-dns/portainer-dns-sync/internal/apiclient"
)

// Operation names the zone call an APIError came from.
type Operation string

const (
	OpFetch   Operation = "fetch"
	OpUpdate  Operation = "update"
	OpRectify Operation = "rectify"
)

// APIError is returned when PowerDNS answers a zone call with an unexpected status.
type APIError struct {
	Op         Operation
	StatusCode int
	Body       string
}

func NewAPIError(op Operation, statusCode int, body []byte) *APIError {
	return &APIError{Op: op, StatusCode: statusCode, Body: apiclient.Snippet(body)}
}

func (e *APIError) Error() string {
	var what string
	switch e.Op {
	case OpFetch:
		what = "fetch DNS zone details"
	case OpUpdate:
		what = "update records"
	case OpRectify:
		what = "rectify zone"
	default:
		what = string(e.Op)
	}
	return fmt.Sprintf("unable to %s: status %d: %s", what, e.StatusCode, e.Body)
}

func IsZoneFetchError(err error) bool   { return isOp(err, OpFetch) }
func IsZoneUpdateError(err error) bool  { return isOp(err, OpUpdate) }
func IsZoneRectifyError(err error) bool { return isOp(err, OpRectify) }

func isOp(err error, op Operation) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Op == op
}
