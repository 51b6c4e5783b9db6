package memory

import (
	"context"
	"sync"

	"gobrix/domain/calibration"
)

// MeasurementStore appends measurements per key in arrival order.
type MeasurementStore struct {
	mu    sync.RWMutex
	byKey map[calibration.Key][]calibration.Measurement
}

// NewMeasurementStore creates an empty store.
func NewMeasurementStore() *MeasurementStore {
	return &MeasurementStore{byKey: make(map[calibration.Key][]calibration.Measurement)}
}

func (s *MeasurementStore) Record(ctx context.Context, m calibration.Measurement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[m.Key] = append(s.byKey[m.Key], m)
	return nil
}

// ListByKey returns the newest measurements first. limit <= 0 returns all.
func (s *MeasurementStore) ListByKey(ctx context.Context, key calibration.Key, limit int) ([]calibration.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.byKey[key]
	n := len(all)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]calibration.Measurement, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
