package domain

import "fmt"

// NormalizationError reports an inventory snapshot that cannot be turned into records safely.
type NormalizationError struct {
	Reason string
}

func NewNormalizationError(format string, args ...any) *NormalizationError {
	return &NormalizationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *NormalizationError) Error() string {
	return "malformed inventory: " + e.Reason
}
