package ports

import (
	"gobrix/domain/core"
	"gobrix/domain/produce"
)

// ProductCatalog resolves consumer-visible identifiers. Lookups are
// in-process table reads; the boolean reports whether a match was found.
type ProductCatalog interface {
	LookupPLU(code string) (produce.PLUEntry, bool)
	LookupTradeName(name string) (core.CultivarID, bool)
	LookupOrigin(label string) (core.RegionID, bool)
	LookupState(state string) (core.RegionID, bool)
}
