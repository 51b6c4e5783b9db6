// Package memory holds in-process implementations of the ports, used by
// tests, demo mode and as the reference store behind workbook imports.
package memory

import (
	"context"
	"sort"
	"sync"

	"gobrix/domain/core"
	"gobrix/domain/produce"
)

// ReferenceStore keeps reference data in maps. Records are copied on the way
// in and out so callers never share mutable state with the store.
type ReferenceStore struct {
	mu         sync.RWMutex
	cultivars  map[core.CultivarID]produce.Cultivar
	regions    map[core.RegionID]produce.Region
	rootstocks map[core.RootstockID]produce.Rootstock
}

// NewReferenceStore creates an empty store.
func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		cultivars:  make(map[core.CultivarID]produce.Cultivar),
		regions:    make(map[core.RegionID]produce.Region),
		rootstocks: make(map[core.RootstockID]produce.Rootstock),
	}
}

// Load adds or replaces records.
func (s *ReferenceStore) Load(cultivars []*produce.Cultivar, regions []*produce.Region, rootstocks []*produce.Rootstock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cultivars {
		cp := *c
		cp.PeakMonths = append([]int(nil), c.PeakMonths...)
		s.cultivars[c.ID] = cp
	}
	for _, r := range regions {
		s.regions[r.ID] = *r
	}
	for _, r := range rootstocks {
		s.rootstocks[r.ID] = *r
	}
}

func (s *ReferenceStore) GetCultivar(_ context.Context, id core.CultivarID) (*produce.Cultivar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cultivars[id]
	if !ok {
		return nil, core.NewUnknownCultivarError(id)
	}
	c.PeakMonths = append([]int(nil), c.PeakMonths...)
	return &c, nil
}

func (s *ReferenceStore) GetRegion(_ context.Context, id core.RegionID) (*produce.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regions[id]
	if !ok {
		return nil, core.NewUnknownRegionError(id)
	}
	return &r, nil
}

func (s *ReferenceStore) GetRootstock(_ context.Context, id core.RootstockID) (*produce.Rootstock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rootstocks[id]
	if !ok {
		return nil, core.NewUnknownRootstockError(id)
	}
	return &r, nil
}

// ListCultivars returns cultivars sorted by id.
func (s *ReferenceStore) ListCultivars(_ context.Context) ([]*produce.Cultivar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*produce.Cultivar, 0, len(s.cultivars))
	for _, c := range s.cultivars {
		c.PeakMonths = append([]int(nil), c.PeakMonths...)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListRegions returns regions sorted by id.
func (s *ReferenceStore) ListRegions(_ context.Context) ([]*produce.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*produce.Region, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
