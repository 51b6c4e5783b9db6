package memory

import (
	"sort"
	"strings"
	"sync"

	"gobrix/domain/core"
	"gobrix/domain/produce"
)

// Catalog is a case-insensitive product catalog.
type Catalog struct {
	mu         sync.RWMutex
	plus       map[string]produce.PLUEntry
	tradeNames map[string]core.CultivarID
	origins    map[string]core.RegionID
	states     map[string]core.RegionID
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		plus:       make(map[string]produce.PLUEntry),
		tradeNames: make(map[string]core.CultivarID),
		origins:    make(map[string]core.RegionID),
		states:     make(map[string]core.RegionID),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// AddPLU registers a retail code.
func (c *Catalog) AddPLU(e produce.PLUEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plus[strings.TrimSpace(e.Code)] = e
}

// AddTradeName registers a marketing name for a cultivar.
func (c *Catalog) AddTradeName(name string, id core.CultivarID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tradeNames[normalize(name)] = id
}

// AddOrigin registers an origin label for a region.
func (c *Catalog) AddOrigin(label string, id core.RegionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.origins[normalize(label)] = id
}

// IndexRegions makes every region reachable by id and name as an origin
// label, and by state as a store-location fallback. When a state has
// several regions the one with the lowest id wins.
func (c *Catalog) IndexRegions(regions []*produce.Region) {
	sorted := append([]*produce.Region(nil), regions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range sorted {
		c.origins[normalize(r.ID.String())] = r.ID
		if r.Name != "" {
			c.origins[normalize(r.Name)] = r.ID
		}
		state := strings.ToUpper(strings.TrimSpace(r.State))
		if _, taken := c.states[state]; state != "" && !taken {
			c.states[state] = r.ID
		}
	}
}

func (c *Catalog) LookupPLU(code string) (produce.PLUEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.plus[strings.TrimSpace(code)]
	return e, ok
}

func (c *Catalog) LookupTradeName(name string) (core.CultivarID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.tradeNames[normalize(name)]
	return id, ok
}

func (c *Catalog) LookupOrigin(label string) (core.RegionID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.origins[normalize(label)]
	return id, ok
}

func (c *Catalog) LookupState(state string) (core.RegionID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.states[strings.ToUpper(strings.TrimSpace(state))]
	return id, ok
}
