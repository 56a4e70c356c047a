// Package shared builds the dependencies common to the API server and the CLI.
package shared

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/tracker"
	"github.com/Abraham77967/Taskmate-Web/services/identity"
	"github.com/Abraham77967/Taskmate-Web/storage/memstore"
	"github.com/Abraham77967/Taskmate-Web/storage/redisstore"
)

type App struct {
	Conf     *core.Config
	Logger   core.Logger
	Remote   core.RemoteStore
	Identity *identity.Provider
	Tracker  *tracker.Tracker

	closers []func() error
}

// Setup opens the configured remote store and wires the identity provider and the tracker.
// The tracker is started: a resumed session attaches right away.
func Setup(ctx context.Context, conf *core.Config, logger core.Logger) (*App, error) {
	app := &App{Conf: conf, Logger: logger}

	switch conf.Store {
	case core.StoreRedis:
		client, err := redisstore.Open(ctx, conf.Redis)
		if err != nil {
			return nil, errors.Wrap(err, "opening redis store")
		}
		app.closers = append(app.closers, client.Close)
		app.Remote = redisstore.NewRemoteStore(client, conf.Redis.Prefix, logger)
	default:
		db, err := memstore.Open()
		if err != nil {
			return nil, errors.Wrap(err, "opening memory store")
		}
		app.Remote = memstore.NewRemoteStore(db)
	}

	provider, err := identity.NewProvider(conf)
	if err != nil {
		_ = app.Close()
		return nil, errors.Wrap(err, "setting up identity provider")
	}
	app.Identity = provider

	app.Tracker = tracker.New(app.Remote, provider, logger, conf)
	app.Tracker.Start()
	return app, nil
}

// Close stops the tracker and releases the remote store.
func (app *App) Close() error {
	if app.Tracker != nil {
		app.Tracker.Stop()
	}
	var firstErr error
	for _, closeFn := range app.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
