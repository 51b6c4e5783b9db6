package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gobrix/app"
	"gobrix/domain/calibration"
	"gobrix/domain/core"
	"gobrix/internal"
	"gobrix/internal/errors"
)

// Server is the internal admin API.
type Server struct {
	router      *gin.Engine
	calibration *app.CalibrationService
	predictions *app.PredictionService
	gdd         *app.GDDService
	logger      *internal.Logger
}

// NewServer creates the admin server and its routes.
func NewServer(calibration *app.CalibrationService, predictions *app.PredictionService, gddService *app.GDDService, logger *internal.Logger) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		router:      router,
		calibration: calibration,
		predictions: predictions,
		gdd:         gddService,
		logger:      logger.With("admin"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	admin := s.router.Group("/admin")
	admin.GET("/calibrations", s.handleListCalibrations)
	admin.GET("/calibrations/:cultivar/:region/:year", s.handleGetCalibration)
	admin.GET("/calibrations/:cultivar/:region/:year/measurements", s.handleMeasurements)
	admin.POST("/calibrations/:cultivar/:region/:year/deactivate", s.handleDeactivate)
	admin.GET("/accuracy", s.handleAccuracy)
	admin.GET("/gdd/versions", s.handleGDDVersions)
	admin.GET("/cache", s.handleCacheStats)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the admin server on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info("admin API listening on %s", addr)
	return s.router.Run(addr)
}

func abort(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatus(err), gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func filterFromQuery(c *gin.Context) (calibration.Filter, error) {
	f := calibration.Filter{
		CultivarID: core.CultivarID(c.Query("cultivar_id")),
		RegionID:   core.RegionID(c.Query("region_id")),
		ActiveOnly: c.Query("active_only") == "true",
	}
	if v := c.Query("season_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.InvalidInput("season_year must be an integer")
		}
		f.SeasonYear = year
	}
	return f, nil
}

func keyFromPath(c *gin.Context) (calibration.Key, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return calibration.Key{}, errors.InvalidInput("year must be an integer")
	}
	return calibration.Key{
		CultivarID: core.CultivarID(c.Param("cultivar")),
		RegionID:   core.RegionID(c.Param("region")),
		SeasonYear: year,
	}, nil
}

func (s *Server) handleListCalibrations(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		abort(c, err)
		return
	}
	records, err := s.calibration.List(c.Request.Context(), filter)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calibrations": records, "count": len(records)})
}

func (s *Server) handleGetCalibration(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		abort(c, err)
		return
	}
	rec, err := s.calibration.Get(c.Request.Context(), key)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleMeasurements(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		abort(c, err)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		abort(c, errors.InvalidInput("limit must be an integer"))
		return
	}
	history, err := s.calibration.History(c.Request.Context(), key, limit)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"measurements": history, "count": len(history)})
}

func (s *Server) handleDeactivate(c *gin.Context) {
	key, err := keyFromPath(c)
	if err != nil {
		abort(c, err)
		return
	}
	if err := s.calibration.Deactivate(c.Request.Context(), key); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key.String(), "active": false})
}

func (s *Server) handleAccuracy(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		abort(c, err)
		return
	}
	rep, err := s.calibration.Accuracy(c.Request.Context(), filter)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleGDDVersions(c *gin.Context) {
	registry := s.gdd.Registry()
	c.JSON(http.StatusOK, gin.H{
		"versions": registry.Versions(),
		"default":  registry.Default(),
		"latest":   registry.Latest(),
	})
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.predictions.CacheStats())
}
