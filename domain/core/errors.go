package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Reference data errors
	ErrNotFound          = errors.New("resource not found")
	ErrUnknownReference  = fmt.Errorf("%w: unknown reference", ErrNotFound)
	ErrUnknownCultivar   = fmt.Errorf("%w: cultivar", ErrUnknownReference)
	ErrUnknownRegion     = fmt.Errorf("%w: region", ErrUnknownReference)
	ErrUnknownRootstock  = fmt.Errorf("%w: rootstock", ErrUnknownReference)
	ErrCalibrationAbsent = fmt.Errorf("%w: calibration", ErrNotFound)

	// Distribution errors
	ErrEmptyDataset             = errors.New("empty dataset")
	ErrUnsupportedFamily        = errors.New("unsupported distribution family")
	ErrInvalidVarianceComponent = errors.New("invalid variance component")
	ErrInvalidDistribution      = errors.New("invalid distribution parameters")

	// Input errors
	ErrMissingAsOf = errors.New("input has no as-of date")

	// Persistence errors
	ErrConcurrentUpdate = errors.New("concurrent update on calibration key")
)

// UnknownReferenceError carries the offending reference id.
type UnknownReferenceError struct {
	Kind string
	ID   string
	base error
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}

func (e *UnknownReferenceError) Unwrap() error {
	return e.base
}

// NewUnknownReferenceError reports any reference kind missing from reference data.
func NewUnknownReferenceError(kind, id string) error {
	return &UnknownReferenceError{Kind: kind, ID: id, base: ErrUnknownReference}
}

// NewUnknownCultivarError reports a cultivar id missing from reference data.
func NewUnknownCultivarError(id CultivarID) error {
	return &UnknownReferenceError{Kind: "cultivar", ID: id.String(), base: ErrUnknownCultivar}
}

// NewUnknownRegionError reports a region id missing from reference data.
func NewUnknownRegionError(id RegionID) error {
	return &UnknownReferenceError{Kind: "region", ID: id.String(), base: ErrUnknownRegion}
}

// NewUnknownRootstockError reports a rootstock id missing from reference data.
func NewUnknownRootstockError(id RootstockID) error {
	return &UnknownReferenceError{Kind: "rootstock", ID: id.String(), base: ErrUnknownRootstock}
}

// NewEmptyDatasetError names the data source that produced no measurements.
func NewEmptyDatasetError(source string) error {
	return fmt.Errorf("%w: no measurements from %s", ErrEmptyDataset, source)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUnknownReference(err error) bool {
	return errors.Is(err, ErrUnknownReference)
}

// ReferenceID extracts the offending id from an unknown-reference error chain.
func ReferenceID(err error) (string, bool) {
	var refErr *UnknownReferenceError
	if errors.As(err, &refErr) {
		return refErr.ID, true
	}
	return "", false
}
