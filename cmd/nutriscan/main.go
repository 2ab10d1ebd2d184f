package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/config"
	"github.com/nutriscan/nutriscan-go/internal/localstore"
	"github.com/nutriscan/nutriscan-go/internal/logger"
	"github.com/nutriscan/nutriscan-go/internal/screens"
	"github.com/nutriscan/nutriscan-go/internal/session"
	"github.com/nutriscan/nutriscan-go/internal/settings"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadClient()

	apiURL := flag.String("api", cfg.APIBaseURL, "API base URL")
	stateFile := flag.String("state", cfg.StateFile, "local state file")
	debug := flag.Bool("debug", false, "log requests to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	log := logger.SetupClient(os.Stderr, level)

	kv := openStore(*stateFile, log)
	sess := session.New(kv, log)
	client := apiclient.New(*apiURL,
		apiclient.WithTokenSource(sess),
		apiclient.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = session.WithStore(ctx, sess)
	deps := screens.NewDeps(ctx, client, settings.NewStore(kv, log), log)

	if err := newApp(deps, os.Stdin, os.Stdout).run(ctx); err != nil {
		log.Error("client stopped", "error", err)
		os.Exit(1)
	}
}

// openStore opens the state file. An unreadable file falls back to memory
// so the client still starts; nothing is persisted in that case.
func openStore(path string, log *slog.Logger) localstore.Store {
	f, err := localstore.OpenFile(path)
	if err != nil {
		log.Warn("state file unusable, keeping state in memory", "path", path, "error", err)
		return localstore.NewMemory()
	}
	return f
}
