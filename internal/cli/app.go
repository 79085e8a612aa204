package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/engine"
	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/storage"
)

// app is what every command needs: settings, the opened store and an engine
// over it.
type app struct {
	settings     *models.Settings
	settingsPath string
	store        *storage.Adapter
	engine       *engine.Engine
	logger       *slog.Logger
	logCloser    io.Closer
}

// openApp loads settings, builds the logger and opens the configured store.
// Interactive mode never logs to the console.
func openApp(cmd *cobra.Command, interactive bool) (*app, error) {
	if err := config.EnsureGlobalDir(); err != nil {
		return nil, err
	}
	settingsPath, err := config.GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettingsFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	level := settings.Log.Level
	var console io.Writer
	if flagLogLevel != "" {
		level = flagLogLevel
		if !interactive {
			console = cmd.ErrOrStderr()
		}
	}
	logFile, err := config.GlobalLogFile()
	if err != nil {
		return nil, err
	}
	logger, closer, err := config.NewLogger(config.LogOptions{Level: level, Console: console, File: logFile})
	if err != nil {
		return nil, err
	}

	storageCfg := settings.Storage
	if flagEphemeral {
		storageCfg.Backend = models.BackendMemory
	}
	store, err := storage.Open(storageCfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	logger.Debug("storage opened", "backend", storageCfg.Backend, "key", store.Key())

	eng, err := engine.New(store, engine.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		_ = closer.Close()
		return nil, fmt.Errorf("failed to load stack: %w", err)
	}

	return &app{
		settings:     settings,
		settingsPath: settingsPath,
		store:        store,
		engine:       eng,
		logger:       logger,
		logCloser:    closer,
	}, nil
}

// Close releases the store and the log file.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing storage failed", "error", err)
	}
	_ = a.logCloser.Close()
}

// errNotConfirmed is returned when a destructive command cannot ask for
// confirmation and --yes was not given.
var errNotConfirmed = errors.New("refusing to replace the stack without confirmation (use --yes)")

// confirm asks prompt on an interactive stdin. yes skips the question.
func confirm(cmd *cobra.Command, prompt string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return false, errNotConfirmed
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(in)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
