// Package cli implements the authctl commands: login, register, logout,
// status, profile and watch against a configured creator-platform backend.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/store"
)

// app bundles the wired dependencies behind every command.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	store   store.Store
	manager *session.Manager
}

// newApp loads configuration, opens the store and builds an initialized
// session manager. The returned closer stops the watcher (if started) and
// closes the store.
func newApp(cmd *cobra.Command) (*app, func(), error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg.LogLevel, verbose)

	st, err := openStore(cfg.StorePath, logger)
	if err != nil {
		return nil, nil, err
	}

	client, err := authapi.NewClient(cfg.BaseURL,
		authapi.WithTimeout(cfg.RequestTimeout.Std()),
		authapi.WithLogger(logger),
	)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	manager, err := session.New(st, client,
		session.WithTTL(cfg.SessionTTL.Std()),
		session.WithCheckInterval(cfg.CheckInterval.Std()),
		session.WithLogger(logger),
	)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	manager.Initialize(cmd.Context())

	a := &app{cfg: cfg, logger: logger, store: st, manager: manager}
	closer := func() {
		_ = manager.Close()
		_ = st.Close()
	}
	return a, closer, nil
}

func newLogger(level string, verbose bool) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	if verbose {
		parsed = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
}

// openStore opens the durable SQLite store, falling back to an in-memory
// store when the database cannot be opened. Sessions then work for the
// current invocation but do not survive it.
func openStore(path string, logger zerolog.Logger) (store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("store directory unavailable, using in-memory store")
		return store.NewMemStore(), nil
	}
	st, err := store.OpenSQLiteStore(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("sqlite store unavailable, using in-memory store")
		return store.NewMemStore(), nil
	}
	return st, nil
}

// printResult reports an operation outcome and converts failure into a
// non-zero exit.
func printResult(res session.Result, successMsg string) error {
	if !res.Success {
		return exitError(1, "%s", res.Error)
	}
	fmt.Println(successMsg)
	return nil
}
