package domain

import "errors"

var (
	// ErrStoreUnavailable signals a failed read against the device store.
	ErrStoreUnavailable = errors.New("fetch failed")
	// ErrLocationUnavailable signals that the user position could not be obtained.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrMalformedRecord signals a raw document that cannot be normalized.
	ErrMalformedRecord = errors.New("malformed record")
)
