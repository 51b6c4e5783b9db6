package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gobrix/adapters/api"
	"gobrix/adapters/excel"
	"gobrix/adapters/memory"
	"gobrix/adapters/sqlstore"
	"gobrix/app"
	"gobrix/internal"
	"gobrix/internal/cache"
	"gobrix/internal/config"
	"gobrix/internal/gdd"
	"gobrix/internal/inference"
	"gobrix/internal/quality"
	"gobrix/internal/testkit"
	"gobrix/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB            *sqlx.DB
	weatherClient *api.WeatherClient

	// Reference data and stores
	Reference    *memory.ReferenceStore
	Catalog      *memory.Catalog
	Calibrations ports.CalibrationRepository
	Measurements ports.MeasurementRepository
	Weather      ports.WeatherSource

	// Services
	Predictions *app.PredictionService
	Calibration *app.CalibrationService
	Batch       *app.BatchPredictor
	Inference   *app.InferenceService
	GDD         *app.GDDService
}

// New creates a new dependency injection container and initializes every
// component in dependency order.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initReference(); err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}
	if err := c.initStores(ctx); err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize stores: %w", err)
	}
	if err := c.initWeather(); err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize weather source: %w", err)
	}
	c.initServices()

	logger.Info("container initialized (driver=%s, weather=%s)", cfg.Database.Driver, c.weatherLabel())
	return c, nil
}

// initReference loads the workbook when one is configured, otherwise the
// built-in fixtures.
func (c *Container) initReference() error {
	wb, err := c.loadWorkbook()
	if err != nil {
		return err
	}

	c.Reference = memory.NewReferenceStore()
	c.Reference.Load(wb.Cultivars, wb.Regions, wb.Rootstocks)

	c.Catalog = memory.NewCatalog()
	for _, e := range wb.PLUs {
		c.Catalog.AddPLU(e)
	}
	for name, id := range wb.TradeNames {
		c.Catalog.AddTradeName(name, id)
	}
	c.Catalog.IndexRegions(wb.Regions)

	c.Logger.Info("reference data: %d cultivars, %d regions, %d rootstocks, %d PLUs",
		len(wb.Cultivars), len(wb.Regions), len(wb.Rootstocks), len(wb.PLUs))
	return nil
}

func (c *Container) loadWorkbook() (*excel.Workbook, error) {
	if path := c.Config.Reference.Workbook; path != "" {
		c.Logger.Info("using reference workbook %s", path)
		return excel.NewWorkbookReader(path, c.Logger).Read()
	}
	c.Logger.Info("no reference workbook configured, using built-in fixtures")
	return FixtureWorkbook(), nil
}

// FixtureWorkbook is the built-in reference data as a workbook.
func FixtureWorkbook() *excel.Workbook {
	return &excel.Workbook{
		Cultivars:  testkit.Cultivars(),
		Regions:    testkit.Regions(),
		Rootstocks: testkit.Rootstocks(),
		PLUs:       testkit.PLUs(),
		TradeNames: testkit.TradeNames(),
	}
}

func (c *Container) initStores(ctx context.Context) error {
	switch c.Config.Database.Driver {
	case config.DriverMemory:
		c.Calibrations = memory.NewCalibrationStore()
		c.Measurements = memory.NewMeasurementStore()
		return nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := sqlstore.Open(c.Config.Database.Driver, c.Config.Database.URL, c.Config.Database.MaxOpenConns)
		if err != nil {
			return err
		}
		c.DB = db
		if err := sqlstore.Migrate(ctx, db); err != nil {
			return err
		}
		c.Calibrations = sqlstore.NewCalibrationRepository(db, sqlstore.DefaultMaxRetries)
		c.Measurements = sqlstore.NewMeasurementRepository(db)
		return nil
	default:
		return fmt.Errorf("unknown database driver %q", c.Config.Database.Driver)
	}
}

func (c *Container) initWeather() error {
	wc := c.Config.Weather
	if wc.URL == "" {
		c.Weather = SyntheticWeather(c.Reference, time.Now().UTC().Year())
		return nil
	}

	source := api.DefaultWeatherSourceConfig(wc.URL)
	source.AuthToken = wc.Token
	source.AuthMethod = wc.AuthMethod
	if source.AuthMethod == "none" {
		source.AuthMethod = ""
	}
	source.Units = wc.Units
	source.RateLimit = wc.RateLimit
	source.Timeout = wc.Timeout

	client, err := api.NewWeatherClient(source)
	if err != nil {
		return err
	}
	c.weatherClient = client
	c.Weather = client
	return nil
}

const syntheticBaseTempF = 50.0

// SyntheticWeather fills a store with two seasons of generated weather per
// region, centred on each region's average daily heat units.
func SyntheticWeather(reference *memory.ReferenceStore, year int) *memory.WeatherStore {
	store := memory.NewWeatherStore()
	regions, _ := reference.ListRegions(context.Background())
	for i, r := range regions {
		cfg := testkit.DefaultWeatherConfig()
		if r.Climate.AvgDailyGDD > 0 {
			mid := syntheticBaseTempF + r.Climate.AvgDailyGDD
			cfg.MeanHighF = mid + 9
			cfg.MeanLowF = mid - 9
		}
		cfg.StartDate = time.Date(year-1, time.January, 1, 0, 0, 0, 0, time.UTC)
		cfg.EndDate = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		cfg.Seed = uint64(i + 1)
		store.Put(r.ID, testkit.GenerateWeather(cfg))
	}
	return store
}

func (c *Container) initServices() {
	cfg := c.Config
	predictor := quality.NewPredictor(quality.WithTiers(cfg.Tiers))

	var resultCache *cache.Cache[quality.Result]
	if cfg.Cache.Size > 0 {
		resultCache = cache.New[quality.Result](cfg.Cache.Size, cfg.Cache.TTL)
	}

	c.Predictions = app.NewPredictionService(
		c.Reference, c.Calibrations, c.Measurements, memory.NewRNG(), predictor,
		cfg.Calibration,
		app.UncertaintySettings{
			Samples:             cfg.Uncertainty.Samples,
			Seed:                cfg.Uncertainty.Seed,
			RegionVariance:      cfg.Uncertainty.RegionVariance,
			EmpiricalMinSamples: cfg.Uncertainty.EmpiricalMinSamples,
		},
		resultCache, c.Logger,
	)
	c.Calibration = app.NewCalibrationService(c.Calibrations, c.Measurements, c.Reference, cfg.Calibration, c.Logger).
		WithPredictions(c.Predictions)
	c.Batch = app.NewBatchPredictor(c.Predictions, cfg.Batch.Concurrency, cfg.Batch.MaxItems)
	c.Inference = app.NewInferenceService(inference.NewBridge(c.Catalog), c.Predictions)
	c.GDD = app.NewGDDService(c.Reference, c.Weather, gdd.DefaultRegistry(), c.Logger)
}

func (c *Container) weatherLabel() string {
	if c.weatherClient != nil {
		return c.Config.Weather.URL
	}
	return "synthetic"
}

// Shutdown releases the weather client and database connection.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.weatherClient != nil {
		c.weatherClient.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
