package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/app"
	"github.com/edgard/intillasense/internal/app/tasks"
	"github.com/edgard/intillasense/internal/logger"
	"github.com/edgard/intillasense/internal/server"
	"github.com/edgard/intillasense/internal/telegram"
	"github.com/edgard/intillasense/internal/telegram/handlers"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the maintenance scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd)
		},
	}
}

func (c *cli) serve(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := c.log

	rt, err := c.openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if c.cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(server.Deps{
		Logger:  log,
		Config:  c.cfg.Server,
		Service: rt.service,
		Store:   rt.store,
	})

	var tg *tgbot.Bot
	if c.cfg.Telegram.Enabled {
		tg, err = telegram.NewTelegramBot(c.cfg.Telegram.Token, log,
			tgbot.WithMiddlewares(logger.TelegramMiddleware(log)),
		)
		if err != nil {
			return err
		}
		hDeps := handlers.HandlerDeps{
			Logger:  log,
			Service: rt.service,
			Token:   c.cfg.Telegram.Token,
		}
		if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
			return fmt.Errorf("failed to register Telegram handlers: %w", err)
		}
	} else {
		log.Info("Telegram front end disabled")
	}

	sched, err := app.NewScheduler(log, c.cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  rt.store,
		Config: c.cfg.Database,
	}))
	if err != nil {
		return err
	}

	log.Info("Starting IntillaSense",
		zap.String("addr", c.cfg.Server.Addr),
		zap.String("ai_provider", c.cfg.AI.Provider),
		zap.Bool("telegram", tg != nil))
	return app.New(log, srv.HTTPServer(), tg, sched, c.cfg.Server.ShutdownTimeout).Run(ctx)
}
