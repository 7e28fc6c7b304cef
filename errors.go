package recipehub

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrInvalidArgument    = errors.New("recipehub: invalid argument")
	ErrProviderNotFound   = errors.New("recipehub: provider not found")
	ErrQuotaExceeded      = errors.New("recipehub: daily quota exceeded")
	ErrQuotaNearExhausted = errors.New("recipehub: daily quota nearly exhausted")
)

// FallbackError is a control-flow signal, not a failure: the named
// provider is exhausted and the caller should retry against Alternative.
// It unwraps to ErrQuotaExceeded so callers that don't handle fallback
// explicitly still observe a quota refusal.
type FallbackError struct {
	Original    string
	Alternative string
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("recipehub: provider %s exhausted, retry against %s", e.Original, e.Alternative)
}

func (e *FallbackError) Unwrap() error { return ErrQuotaExceeded }

// AsFallback extracts a FallbackError from an error chain.
func AsFallback(err error) (*FallbackError, bool) {
	var fe *FallbackError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsQuotaDenied returns true if the error is a policy refusal rather
// than a provider failure. The aggregator treats both the same way:
// this provider is unavailable right now, try the next one.
func IsQuotaDenied(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrQuotaNearExhausted)
}
