package ports

import (
	"context"
	"time"

	"gobrix/domain/core"
	"gobrix/internal/gdd"
)

// WeatherSource supplies daily temperature extremes and water stress per region.
type WeatherSource interface {
	DailyReadings(ctx context.Context, region core.RegionID, from, to time.Time) ([]gdd.DailyReading, error)
}
