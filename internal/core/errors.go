package core

import (
	"errors"
	"fmt"

	"github.com/auto-dns/portainer-dns-sync/internal/powerdns"
)

// RecordValidationError represents an error that occurs during DNS record validation
type RecordValidationError struct {
	Message string
}

// Error implements the error interface
func (e *RecordValidationError) Error() string {
	return e.Message
}

// NewRecordValidationError creates a new RecordValidationError
func NewRecordValidationError(message string) *RecordValidationError {
	return &RecordValidationError{Message: message}
}

// Stage names the step of a reconciliation cycle.
type Stage string

const (
	StageLock           Stage = "lock"
	StageFetchInventory Stage = "fetch_inventory"
	StageNormalize      Stage = "normalize"
	StageFetchZone      Stage = "fetch_zone"
	StageApply          Stage = "apply"
	StageRectify        Stage = "rectify"
)

// CycleError aborts a reconciliation cycle. The baseline is left untouched.
type CycleError struct {
	Stage Stage
	Err   error
}

func NewCycleError(stage Stage, err error) *CycleError {
	return &CycleError{Stage: stage, Err: err}
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("reconciliation failed at %s: %v", e.Stage, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// failureKind classifies a cycle error for logs.
func failureKind(err error) string {
	switch {
	case powerdns.IsZoneFetchError(err):
		return "zone_fetch"
	case powerdns.IsZoneUpdateError(err):
		return "zone_update"
	case powerdns.IsZoneRectifyError(err):
		return "zone_rectify"
	}
	var cycleErr *CycleError
	if errors.As(err, &cycleErr) {
		return string(cycleErr.Stage)
	}
	return "unknown"
}
