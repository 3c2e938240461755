package main

import (
	"context"
	"log/slog"
	"os"

	"ams-backend/internal/app"
	"ams-backend/internal/config"
	"ams-backend/internal/gateway"

	"github.com/aws/aws-lambda-go/lambda"
)

// Function modes selected with AMS_LAMBDA_MODE.
const (
	ModeIngest = "ingest"
	ModeAPI    = "api"
)

func main() {
	cfg, err := config.Load(os.Getenv("AMS_CONFIG"))
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx := context.Background()
	a, err := app.Build(ctx, cfg)
	if err != nil {
		panic(err)
	}

	mode := os.Getenv("AMS_LAMBDA_MODE")
	slog.InfoContext(ctx, "Starting lambda", "mode", mode)
	switch mode {
	case ModeIngest:
		lambda.Start(gateway.NewIngestHandler(a.Normalizer).HandleRequest)
	case ModeAPI, "":
		lambda.Start(gateway.NewAPIHandler(a.API.Router()).HandleRequest)
	default:
		slog.Error("Unknown lambda mode", "mode", mode)
		os.Exit(1)
	}
}
