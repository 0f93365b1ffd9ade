package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opsbot/opsbot/internal/auth"
	"github.com/opsbot/opsbot/internal/mcpserver"
	"github.com/opsbot/opsbot/internal/telegram"
	"github.com/opsbot/opsbot/internal/web"
)

var errNoTelegramToken = errors.New("TELEGRAM_BOT_TOKEN is required")

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			mgr, err := a.sessions()
			if err != nil {
				return err
			}
			stopBackground, err := a.background(mgr)
			defer stopBackground()
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			srv := web.NewServer(mgr, a.cfg.HTTPAddr)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				slog.Info("shutting down dashboard")
				return srv.Stop(context.Background())
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func newTelegramCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram chat front-end",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.TelegramBotToken == "" {
				return errNoTelegramToken
			}
			allow := auth.New(a.cfg.AllowedUsers)
			if allow.Len() == 0 {
				slog.Warn("ALLOWED_USERS is empty, every chat will be denied")
			} else {
				slog.Info("telegram allowlist loaded", "users", allow.Len())
			}
			mgr, err := a.sessions()
			if err != nil {
				return err
			}
			stopBackground, err := a.background(mgr)
			defer stopBackground()
			if err != nil {
				return err
			}

			bot, err := telegram.New(a.cfg.TelegramBotToken, allow, mgr)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			bot.Start(ctx)
			return nil
		},
	}
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve dashboard tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := a.sessions()
			if err != nil {
				return err
			}
			stopBackground, err := a.background(mgr)
			defer stopBackground()
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			if err := mcpserver.Run(ctx, mgr.Get("mcp"), Version); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
