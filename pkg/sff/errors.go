package sff

import "github.com/pkg/errors"

var (
	// ErrIdpromSize is returned when a buffer is not exactly IdpromSize bytes.
	ErrIdpromSize = errors.New("sff: idprom must be 256 bytes")

	// ErrUnknownName is returned by the Parse* lookups.
	ErrUnknownName = errors.New("sff: unknown enum name")
)
