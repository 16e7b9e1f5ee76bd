package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/storefront/internal/app"
	"github.com/nhle/storefront/internal/notifystore"
	"github.com/nhle/storefront/internal/push"
	appsync "github.com/nhle/storefront/internal/sync"
	"github.com/nhle/storefront/internal/theme"
)

// runUI wires the store, poller and optional push feed and runs the
// terminal UI until the user quits.
func runUI(parent context.Context, f flags) error {
	e, err := bootstrap(f)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	if err := theme.Apply(e.cfg.Display.Theme); err != nil {
		return fmt.Errorf("display.theme: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	nc := e.cfg.Notifications
	store := notifystore.New(e.newClient(), storeOptions(nc, e.logger.Named("store"))...)
	defer store.Close()

	poller := appsync.New(store, e.session,
		appsync.WithInterval(time.Duration(nc.PollIntervalSec)*time.Second),
		appsync.WithLogger(e.logger.Named("poller")),
	)

	if url := e.cfg.Push.URL; url != "" {
		sub := push.NewSubscriber(url, e.session, store, push.WithLogger(e.logger.Named("push")))
		go func() {
			if err := sub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				e.logger.Warn("push feed stopped", zap.Error(err))
			}
		}()
	}

	e.logger.Info("starting",
		zap.String("version", Version),
		zap.String("api", e.cfg.API.BaseURL),
		zap.Bool("authenticated", e.session.Authenticated()),
	)

	root := app.New(app.Deps{
		Store:         store,
		Poller:        poller,
		Session:       e.session,
		DropdownLimit: nc.DropdownLimit,
		Logger:        e.logger.Named("ui"),
	})

	final, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if m, ok := final.(app.Model); ok {
		m.Shutdown()
	} else {
		root.Shutdown()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
