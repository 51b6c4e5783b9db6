package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"gobrix/internal"
	"gobrix/internal/config"
	"gobrix/internal/container"
	"gobrix/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	ctx := context.Background()
	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(ctx)

	public := ui.NewApp(ui.Config{Port: appConfig.Server.Port}, ui.Services{
		Predictions: appContainer.Predictions,
		Batch:       appContainer.Batch,
		Inference:   appContainer.Inference,
		Calibration: appContainer.Calibration,
		GDD:         appContainer.GDD,
	}, logger)
	admin := ui.NewServer(appContainer.Calibration, appContainer.Predictions, appContainer.GDD, logger)

	var g errgroup.Group
	g.Go(public.Start)
	g.Go(func() error {
		return admin.Start(fmt.Sprintf(":%s", appConfig.Server.AdminPort))
	})
	if err := g.Wait(); err != nil {
		log.Fatal("Server failed:", err)
	}
}
