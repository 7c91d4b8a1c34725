// Command salary-tracker ведёт учёт дневного заработка и рассчитывает зарплату
// с учётом налога, пенсионных и страховых удержаний.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/magabrotheeeer/salary-tracker/internal/app/tracker"
	"github.com/magabrotheeeer/salary-tracker/internal/config"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/logger"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env, os.Stderr)

	log.Debug("starting salary-tracker", slog.String("env", cfg.Env), slog.String("driver", cfg.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := tracker.NewCLI(os.Stdout, func(c *cli.Context) (*tracker.App, error) {
		return tracker.New(c.Context, cfg, log)
	})

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Debug("command failed", sl.Err(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
