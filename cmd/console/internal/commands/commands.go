package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/client"
	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/logger"
	"github.com/wolfeidau/cloudconsole/internal/service"
	"github.com/wolfeidau/cloudconsole/internal/state"
	"github.com/wolfeidau/cloudconsole/internal/telemetry"
)

type Globals struct {
	Debug     bool
	Version   string
	ServerURL string
	CacheDir  string
	Tracing   bool

	// Out receives command output. Nil means stdout.
	Out io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// session is one console run: a client, the event loop and the stores.
type session struct {
	loop *flux.Loop
	reg  *state.Registry
	svc  *service.Service

	cancel   context.CancelFunc
	done     chan struct{}
	shutdown telemetry.ShutdownFunc
}

func openSession(ctx context.Context, globals *Globals) (*session, error) {
	log.Logger = logger.Setup(globals.Debug)

	cfg := client.DefaultConfig()
	if globals.ServerURL != "" {
		cfg.ServerURL = globals.ServerURL
	}
	cfg.CacheDir = globals.CacheDir
	cfg.Tracing = globals.Tracing

	api, err := client.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	shutdown := telemetry.NoopShutdown
	if globals.Tracing {
		shutdown, err = telemetry.InitTelemetry(ctx, "cloudconsole-console", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = telemetry.NoopShutdown
		}
	}

	loop := flux.NewLoop()
	reg := state.NewRegistry(loop, flux.NewDispatcher())

	ctx, cancel := context.WithCancel(ctx)
	s := &session{
		loop:     loop,
		reg:      reg,
		svc:      service.New(api, loop, reg.Dispatcher),
		cancel:   cancel,
		done:     make(chan struct{}),
		shutdown: shutdown,
	}

	go func() {
		defer close(s.done)
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Event loop stopped")
		}
	}()

	return s, nil
}

// do runs fn on the loop and waits for it.
func (s *session) do(ctx context.Context, fn func()) error {
	return s.loop.Do(ctx, fn)
}

func (s *session) Close() {
	s.loop.Stop()
	s.cancel()

	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Timed out waiting for event loop to stop")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown telemetry")
	}
}
