package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/flux"
	"github.com/wolfeidau/cloudconsole/internal/view"
)

type VpcsCmd struct {
	Watch    bool          `help:"Watch for changes" default:"false"`
	Interval time.Duration `help:"Refresh interval when watching" default:"5s"`
}

func (c *VpcsCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := openSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.Close()

	// datacenter and organization names are resolved from their stores
	if err := s.svc.FetchAll(ctx).Wait(ctx); err != nil {
		return err
	}

	if c.Watch {
		return c.watch(ctx, s, globals)
	}

	return printVpcs(ctx, s, globals)
}

func (c *VpcsCmd) watch(ctx context.Context, s *session, globals *Globals) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(globals.out(), "Watching vpcs (press Ctrl+C to stop)...")
	fmt.Fprintln(globals.out())

	changed := make(chan struct{}, 1)
	var listener flux.ListenerID
	if err := s.do(ctx, func() {
		listener = s.reg.Vpcs.AddChangeListener(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}); err != nil {
		return err
	}
	defer func() {
		_ = s.do(context.Background(), func() {
			s.reg.Vpcs.RemoveChangeListener(listener)
		})
	}()

	if err := printVpcs(ctx, s, globals); err != nil {
		return err
	}

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.svc.FetchVpcs(ctx).Wait(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("Failed to refresh vpcs")
			}
		case <-changed:
			fmt.Fprintf(globals.out(), "\n--- %s ---\n", time.Now().Format("15:04:05"))
			if err := printVpcs(ctx, s, globals); err != nil {
				return err
			}
		}
	}
}

func printVpcs(ctx context.Context, s *session, globals *Globals) error {
	var cards []string
	if err := s.do(ctx, func() {
		for _, vpc := range s.reg.Vpcs.MutableCopy() {
			cards = append(cards, view.NewVpcEditor(s.reg, s.svc, vpc).Render())
		}
	}); err != nil {
		return err
	}

	if len(cards) == 0 {
		fmt.Fprintln(globals.out(), "No VPCs found")
		return nil
	}

	fmt.Fprintln(globals.out(), strings.Join(cards, "\n"))
	return nil
}
