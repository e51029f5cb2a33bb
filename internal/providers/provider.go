package providers

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotConfigured is returned without any network call when a provider has no API key.
var ErrNotConfigured = errors.New("provider not configured")

// StatusError is returned when an upstream API answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// finite drops NaN and infinite values so they never reach a PropertyData.
func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
