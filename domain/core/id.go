package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	CultivarID    ID
	RegionID      ID
	RootstockID   ID
	CalibrationID ID
	MeasurementID ID
)

// String conversions for domain IDs
func (id CultivarID) String() string    { return ID(id).String() }
func (id RegionID) String() string      { return ID(id).String() }
func (id RootstockID) String() string   { return ID(id).String() }
func (id CalibrationID) String() string { return ID(id).String() }
func (id MeasurementID) String() string { return ID(id).String() }

// NewCalibrationID issues a time-ordered calibration record identifier.
func NewCalibrationID() CalibrationID { return CalibrationID(NewID()) }

// NewMeasurementID issues a time-ordered measurement identifier.
func NewMeasurementID() MeasurementID { return MeasurementID(NewID()) }

// ParseCultivarID parses a string into CultivarID
func ParseCultivarID(s string) (CultivarID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("cultivar ID cannot be empty")
	}
	return CultivarID(strings.ToLower(s)), nil
}

// ParseRegionID parses a string into RegionID
func ParseRegionID(s string) (RegionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("region ID cannot be empty")
	}
	return RegionID(strings.ToLower(s)), nil
}
