package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ams-backend/internal/app"
	"ams-backend/internal/config"
	k "ams-backend/internal/kafka"
	"ams-backend/internal/mqtt"
	"ams-backend/internal/processors/ingest"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", os.Getenv("AMS_CONFIG"), "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	slog.InfoContext(ctx, "Starting service...", "store", cfg.Store.Driver, "channel", cfg.Channel.Driver)

	a, err := app.Build(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer a.Close(context.Background())

	wg := sync.WaitGroup{}

	if cfg.HasSource(config.SourceKafka) {
		kIngester := ingest.New(ingest.Config{
			Name: "kafka-ingest-worker",
			Reader: k.NewReader(k.ReaderConfig{
				Brokers:         cfg.Kafka.Brokers,
				ConsumerGroupID: cfg.Kafka.ConsumerGroup,
				Topic:           cfg.Kafka.IngestTopic,
			}),
			Sink: a.Normalizer,
		})
		defer kIngester.Close(context.Background())
		wg.Go(func() {
			kIngester.Run(ctx)
		})
	}

	if cfg.HasSource(config.SourceMQTT) {
		if a.MQTT == nil {
			panic("mqtt ingest source requires the mqtt channel driver")
		}
		mIngester := ingest.New(ingest.Config{Name: "mqtt-ingest", Sink: a.Normalizer})
		err := a.MQTT.Subscribe(cfg.MQTT.IngestTopic, 1, func(msg mqtt.Message) {
			mIngester.HandleMessage(ctx, msg)
		})
		if err != nil {
			panic(err)
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.API.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	wg.Go(func() {
		slog.InfoContext(ctx, "HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "HTTP server error", "error", err)
			cancel()
		}
	})

	go func() {
		select {
		case <-sigs:
		case <-ctx.Done():
		}
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error shutting down HTTP server", "error", err)
		}
	}()

	wg.Wait()
	slog.Info("Service stopped")
}
