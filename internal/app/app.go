// Package app runs the long-lived IntillaSense components under one
// lifecycle: the HTTP server, the optional Telegram poller and the
// maintenance scheduler.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App orchestrates the running components. Telegram may be nil.
type App struct {
	log             *zap.Logger
	httpServer      *http.Server
	telegram        *tgbot.Bot
	scheduler       *Scheduler
	shutdownTimeout time.Duration
}

// New creates an App. tg may be nil when the Telegram front end is off.
func New(log *zap.Logger, httpServer *http.Server, tg *tgbot.Bot, scheduler *Scheduler, shutdownTimeout time.Duration) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		log:             log.Named("orchestrator"),
		httpServer:      httpServer,
		telegram:        tg,
		scheduler:       scheduler,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run starts every component and blocks until ctx is canceled or one of
// them fails. The remaining components are then shut down.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("Starting orchestrator")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("Starting HTTP server", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		if gCtx.Err() == nil {
			return errors.New("http server stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.log.Info("Shutdown signal received, stopping HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), a.shutdownTimeout)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.log.Error("Error during HTTP server shutdown", zap.Error(err))
			return fmt.Errorf("http server shutdown: %w", err)
		}
		a.log.Info("HTTP server stopped")
		return nil
	})

	if a.telegram != nil {
		g.Go(func() error {
			a.log.Info("Starting Telegram bot listener")
			a.telegram.Start(gCtx)
			a.log.Info("Telegram bot listener stopped")

			if gCtx.Err() == nil {
				return errors.New("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	if a.scheduler != nil {
		g.Go(func() error {
			if _, err := a.scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			a.log.Info("Shutdown signal received, stopping scheduler")
			if err := a.scheduler.Stop(); err != nil {
				a.log.Error("Error stopping scheduler", zap.Error(err))
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("Orchestrator stopped due to error", zap.Error(err))
		return err
	}

	a.log.Info("Orchestrator stopped gracefully")
	return nil
}
