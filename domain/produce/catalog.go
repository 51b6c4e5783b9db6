package produce

import "gobrix/domain/core"

// PLUEntry describes a retail price look-up code.
type PLUEntry struct {
	Code        string          `json:"code"`
	CropID      string          `json:"crop_id"`
	CultivarID  core.CultivarID `json:"cultivar_id,omitempty"`
	Description string          `json:"description"`
	Organic     bool            `json:"organic"`
}
