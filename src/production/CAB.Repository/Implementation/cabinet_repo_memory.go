package implementation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	cabmodels "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Models"
	interfaces "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Repository/Interfaces"
)

// MemoryCabinetRepository is used when no MongoDB is configured
type MemoryCabinetRepository struct {
	mu       sync.RWMutex
	cabinets map[string]cabmodels.CabinetRecord
}

func NewMemoryCabinetRepository() *MemoryCabinetRepository {
	return &MemoryCabinetRepository{cabinets: make(map[string]cabmodels.CabinetRecord)}
}

func (r *MemoryCabinetRepository) Register(_ context.Context, record cabmodels.CabinetRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cabinets[record.CabinetID]; exists {
		return fmt.Errorf("%s: %w", record.CabinetID, interfaces.ErrCabinetExists)
	}
	r.cabinets[record.CabinetID] = record
	return nil
}

func (r *MemoryCabinetRepository) GetCabinet(_ context.Context, cabinetID string) (*cabmodels.CabinetRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.cabinets[cabinetID]
	if !ok {
		return nil, interfaces.ErrCabinetNotFound
	}
	return &record, nil
}

func (r *MemoryCabinetRepository) ListCabinets(_ context.Context) ([]cabmodels.CabinetRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]cabmodels.CabinetRecord, 0, len(r.cabinets))
	for _, record := range r.cabinets {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CabinetID < records[j].CabinetID })
	return records, nil
}

func (r *MemoryCabinetRepository) Deregister(_ context.Context, cabinetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cabinets[cabinetID]; !ok {
		return interfaces.ErrCabinetNotFound
	}
	delete(r.cabinets, cabinetID)
	return nil
}
