package domain

import "errors"

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidProjectType = errors.New("invalid project type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrInvalidSpend       = errors.New("invalid spend amount")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPhase       = errors.New("invalid phase")
	ErrInvalidOwner       = errors.New("invalid owner type")
	ErrInvalidRisk        = errors.New("invalid risk level")
	ErrInvalidRequirement = errors.New("invalid requirement")
	ErrInvalidSequence    = errors.New("invalid sequence")
	ErrNotDeletable       = errors.New("activity is not deletable")
)
