// Package inference maps sparse shelf-level signals (PLU codes, trade names,
// origin labels, store location) onto the inputs the quality predictor needs.
package inference

import (
	"fmt"
	"strings"
	"time"

	"gobrix/domain/core"
	"gobrix/internal/quality"
	"gobrix/ports"
)

// Field names used in data gaps.
const (
	FieldPLU        = "plu"
	FieldTradeName  = "trade_name"
	FieldOrigin     = "origin"
	FieldStoreState = "store_state"
	FieldCultivar   = "cultivar"
	FieldRegion     = "region"
	FieldAsOf       = "as_of"
)

// RegionSource says how a region was resolved.
type RegionSource string

const (
	RegionFromOrigin RegionSource = "origin_label"
	RegionFromStore  RegionSource = "store_location"
)

const consumerMeasurementSource = "consumer refractometer"

// Signals are what a shopper or store system can observe.
type Signals struct {
	PLU        string    `json:"plu,omitempty"`
	TradeName  string    `json:"trade_name,omitempty"`
	StoreState string    `json:"store_state,omitempty"`
	Origin     string    `json:"origin,omitempty"`
	Brix       *float64  `json:"brix,omitempty"`
	AsOf       time.Time `json:"as_of"`
}

// DataGap is a signal that was missing or could not be resolved.
type DataGap struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Inference is the outcome of resolving signals. Input is set only when
// CanPredict is true.
type Inference struct {
	CanPredict   bool            `json:"can_predict"`
	Reason       string          `json:"reason,omitempty"`
	CropID       string          `json:"crop_id,omitempty"`
	CultivarID   core.CultivarID `json:"cultivar_id,omitempty"`
	RegionID     core.RegionID   `json:"region_id,omitempty"`
	RegionSource RegionSource    `json:"region_source,omitempty"`
	Organic      bool            `json:"organic"`
	Gaps         []DataGap       `json:"data_gaps"`
	Input        *quality.Input  `json:"input,omitempty"`
}

// Bridge resolves signals against a product catalog.
type Bridge struct {
	catalog ports.ProductCatalog
}

// NewBridge creates a bridge over catalog.
func NewBridge(catalog ports.ProductCatalog) *Bridge {
	return &Bridge{catalog: catalog}
}

// Infer never fails: anything it cannot resolve is reported as a gap.
func (b *Bridge) Infer(s Signals) Inference {
	out := Inference{Gaps: []DataGap{}}

	b.resolveProduct(s, &out)
	b.resolveRegion(s, &out)

	var missing []string
	if out.CultivarID == "" {
		missing = append(missing, "cultivar")
		out.gap(FieldCultivar, "no cultivar could be resolved from the PLU or trade name")
	}
	if out.RegionID == "" {
		missing = append(missing, "growing region")
		out.gap(FieldRegion, "no growing region could be resolved from the origin label or store location")
	}
	if s.AsOf.IsZero() {
		missing = append(missing, "observation date")
		out.gap(FieldAsOf, "no observation date supplied")
	}
	if len(missing) > 0 {
		out.Reason = fmt.Sprintf("cannot predict without a %s", strings.Join(missing, " or "))
		return out
	}

	in := quality.Input{CultivarID: out.CultivarID, RegionID: out.RegionID, AsOf: s.AsOf}
	if out.Organic {
		in.Practices = &quality.PracticeProfile{Method: quality.PracticeOrganic}
	}
	if s.Brix != nil {
		in.Measurement = &quality.Measurement{Brix: *s.Brix, Source: consumerMeasurementSource}
	}
	out.CanPredict = true
	out.Input = &in
	return out
}

func (b *Bridge) resolveProduct(s Signals, out *Inference) {
	code := strings.TrimSpace(s.PLU)
	if code == "" {
		out.gap(FieldPLU, "not provided")
	} else {
		base, organic, ok := ParsePLU(code)
		switch {
		case !ok:
			out.gap(FieldPLU, fmt.Sprintf("%q is not a 4 or 5 digit PLU", code))
		default:
			out.Organic = organic
			if entry, found := b.catalog.LookupPLU(base); found {
				out.CropID = entry.CropID
				out.CultivarID = entry.CultivarID
				out.Organic = out.Organic || entry.Organic
			} else {
				out.gap(FieldPLU, fmt.Sprintf("PLU %s is not in the catalog", base))
			}
		}
	}

	name := strings.TrimSpace(s.TradeName)
	if name == "" {
		if out.CultivarID == "" {
			out.gap(FieldTradeName, "not provided")
		}
		return
	}
	if id, found := b.catalog.LookupTradeName(name); found {
		// Trade names are cultivar specific; PLUs often only identify the crop.
		out.CultivarID = id
		return
	}
	out.gap(FieldTradeName, fmt.Sprintf("trade name %q is not in the catalog", name))
}

func (b *Bridge) resolveRegion(s Signals, out *Inference) {
	if origin := strings.TrimSpace(s.Origin); origin != "" {
		if id, found := b.catalog.LookupOrigin(origin); found {
			out.RegionID = id
			out.RegionSource = RegionFromOrigin
			return
		}
		out.gap(FieldOrigin, fmt.Sprintf("origin %q does not match a known growing region", origin))
	} else {
		out.gap(FieldOrigin, "not provided")
	}

	state := strings.TrimSpace(s.StoreState)
	if state == "" {
		out.gap(FieldStoreState, "not provided")
		return
	}
	if id, found := b.catalog.LookupState(state); found {
		out.RegionID = id
		out.RegionSource = RegionFromStore
		return
	}
	out.gap(FieldStoreState, fmt.Sprintf("no growing region on file for store state %q", state))
}

func (i *Inference) gap(field, reason string) {
	i.Gaps = append(i.Gaps, DataGap{Field: field, Reason: reason})
}

// ParsePLU validates a PLU and strips the organic prefix. Five-digit codes
// starting with 9 are organic; 8 is a retired prefix and is stripped too.
func ParsePLU(code string) (base string, organic bool, ok bool) {
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", false, false
		}
	}
	switch len(code) {
	case 4:
		return code, false, true
	case 5:
		switch code[0] {
		case '9':
			return code[1:], true, true
		case '8':
			return code[1:], false, true
		}
	}
	return "", false, false
}
