package interfaces

import (
	"context"
	"errors"

	cabmodels "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Models"
)

var (
	// ErrCabinetExists is returned when a cabinet ID is already claimed by another unit
	ErrCabinetExists = errors.New("cabinet id already registered")

	ErrCabinetNotFound = errors.New("cabinet not found")
)

// CabinetRepository keeps cabinet IDs unique across the fleet
type CabinetRepository interface {
	// Register claims record.CabinetID; fails with ErrCabinetExists if taken
	Register(ctx context.Context, record cabmodels.CabinetRecord) error

	GetCabinet(ctx context.Context, cabinetID string) (*cabmodels.CabinetRecord, error)

	// ListCabinets returns every cabinet ordered by ID
	ListCabinets(ctx context.Context) ([]cabmodels.CabinetRecord, error)

	Deregister(ctx context.Context, cabinetID string) error
}
