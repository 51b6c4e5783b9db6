package ports

import (
	"context"

	"gobrix/domain/core"
	"gobrix/domain/produce"
)

// ReferenceRepository supplies immutable cultivar, region and rootstock
// records. Missing ids return an error wrapping core.ErrUnknownReference.
type ReferenceRepository interface {
	GetCultivar(ctx context.Context, id core.CultivarID) (*produce.Cultivar, error)
	GetRegion(ctx context.Context, id core.RegionID) (*produce.Region, error)
	GetRootstock(ctx context.Context, id core.RootstockID) (*produce.Rootstock, error)

	ListCultivars(ctx context.Context) ([]*produce.Cultivar, error)
	ListRegions(ctx context.Context) ([]*produce.Region, error)
}
