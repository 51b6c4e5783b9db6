package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gobrix/domain/calibration"
	"gobrix/domain/core"
	"gobrix/ports"
)

// CalibrationStore serializes writers per key with a key-scoped mutex.
// Writers on different keys never contend.
type CalibrationStore struct {
	mu      sync.Mutex
	records map[calibration.Key]calibration.RegionalCalibration
	locks   map[calibration.Key]*sync.Mutex
}

// NewCalibrationStore creates an empty store.
func NewCalibrationStore() *CalibrationStore {
	return &CalibrationStore{
		records: make(map[calibration.Key]calibration.RegionalCalibration),
		locks:   make(map[calibration.Key]*sync.Mutex),
	}
}

func (s *CalibrationStore) keyLock(key calibration.Key) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *CalibrationStore) load(key calibration.Key) (*calibration.RegionalCalibration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, false
	}
	return &rec, true
}

func (s *CalibrationStore) store(rec calibration.RegionalCalibration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
}

func (s *CalibrationStore) Get(ctx context.Context, key calibration.Key) (*calibration.RegionalCalibration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := s.load(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrCalibrationAbsent, key)
	}
	return rec, nil
}

func (s *CalibrationStore) Update(ctx context.Context, key calibration.Key, fn ports.UpdateFunc) (*calibration.RegionalCalibration, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, _ := s.load(key)
	var version int64
	if current != nil {
		version = current.Version
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return current, nil
	}
	stored := *next
	stored.Key = key
	stored.Version = version + 1
	s.store(stored)
	return &stored, nil
}

// List returns matching records ordered by key.
func (s *CalibrationStore) List(ctx context.Context, filter calibration.Filter) ([]*calibration.RegionalCalibration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := make([]*calibration.RegionalCalibration, 0, len(s.records))
	for _, rec := range s.records {
		if filter.Matches(&rec) {
			out = append(out, &rec)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].Key, out[j].Key) })
	return out, nil
}

func (s *CalibrationStore) Deactivate(ctx context.Context, key calibration.Key) error {
	_, err := s.Update(ctx, key, func(current *calibration.RegionalCalibration) (*calibration.RegionalCalibration, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", core.ErrCalibrationAbsent, key)
		}
		current.Active = false
		return current, nil
	})
	return err
}

func lessKey(a, b calibration.Key) bool {
	if a.CultivarID != b.CultivarID {
		return a.CultivarID < b.CultivarID
	}
	if a.RegionID != b.RegionID {
		return a.RegionID < b.RegionID
	}
	return a.SeasonYear < b.SeasonYear
}
