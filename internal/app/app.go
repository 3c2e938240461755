package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ams-backend/internal/api"
	"ams-backend/internal/channel"
	"ams-backend/internal/commands"
	"ams-backend/internal/config"
	"ams-backend/internal/db"
	"ams-backend/internal/directory"
	"ams-backend/internal/dynamo"
	"ams-backend/internal/history"
	k "ams-backend/internal/kafka"
	"ams-backend/internal/mqtt"
	"ams-backend/internal/normalizer"
	"ams-backend/internal/status"
	"ams-backend/internal/store"
)

var (
	ErrStoreInit   = errors.New("error initializing store")
	ErrChannelInit = errors.New("error initializing channel")
)

// App holds the wired components shared by the service and lambda entrypoints.
type App struct {
	Store      store.Store
	Publisher  channel.Publisher
	Normalizer *normalizer.Normalizer
	API        *api.API
	// MQTT is set when the channel driver is mqtt.
	MQTT *mqtt.Client

	closers []func(ctx context.Context)
}

func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	const fn = "App:Build"
	a := &App{}

	s, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrStoreInit, err)
	}
	a.Store = s

	pub, err := a.openChannel(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrChannelInit, err)
	}
	a.Publisher = pub

	a.Normalizer = normalizer.New(normalizer.Config{
		Store:           a.Store,
		Publisher:       a.Publisher,
		DefaultDeviceID: cfg.Directory.UnifiedDeviceID,
	})
	a.API = api.New(api.Config{
		Status:  status.New(status.Config{Store: a.Store}),
		History: history.New(history.Config{Store: a.Store}),
		Directory: directory.New(directory.Config{
			Store:             a.Store,
			UnifiedDeviceMode: cfg.Directory.UnifiedDeviceMode,
			FastPath:          cfg.Directory.FastPath,
			UnifiedDeviceID:   cfg.Directory.UnifiedDeviceID,
			ScanPageSize:      cfg.Directory.ScanPageSize,
		}),
		Commands: commands.New(commands.Config{Publisher: a.Publisher}),
		Ingester: a.Normalizer,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		d, err := db.Init(ctx, db.Config{
			ConnString:     cfg.Postgres.ConnString,
			MigrationsPath: cfg.Postgres.MigrationsPath,
			ScanPageSize:   cfg.Directory.ScanPageSize,
			MaxConns:       cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) { d.Close() })
		return d, nil
	case config.StoreDynamoDB:
		return dynamo.Connect(ctx, dynamo.Config{
			TableName: cfg.DynamoDB.Table,
			Region:    cfg.DynamoDB.Region,
			Endpoint:  cfg.DynamoDB.Endpoint,
		})
	case config.StoreMemory:
		slog.WarnContext(ctx, "Using in-memory store; records are lost on restart")
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func (a *App) openChannel(ctx context.Context, cfg *config.Config) (channel.Publisher, error) {
	switch cfg.Channel.Driver {
	case config.ChannelMQTT:
		c, err := mqtt.Connect(mqtt.Config{
			BrokerURL: cfg.MQTT.BrokerURL,
			ClientID:  cfg.MQTT.ClientID,
		})
		if err != nil {
			return nil, err
		}
		a.MQTT = c
		a.closers = append(a.closers, func(context.Context) { c.Close() })
		return c, nil
	case config.ChannelKafka:
		p := channel.NewKafkaPublisher(k.NewWriter(cfg.Kafka.Brokers))
		a.closers = append(a.closers, p.Close)
		return p, nil
	}
	return nil, fmt.Errorf("unknown channel driver %q", cfg.Channel.Driver)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
	a.closers = nil
}
