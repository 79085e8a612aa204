// Package tui implements the interactive TUI for topstack.
package tui

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/engine"
	"github.com/topstack/topstack/internal/models"
	"github.com/topstack/topstack/internal/watcher"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Options configures Run.
type Options struct {
	Engine   *engine.Engine
	Settings *models.Settings
	// SettingsPath is re-read when it changes on disk. Empty disables.
	SettingsPath string
	// StackPath is the file holding the stack, reloaded when another
	// process writes it. Empty disables.
	StackPath string
	Logger    *slog.Logger
}

// Run launches the TUI and blocks until the user quits.
func Run(opts Options) error {
	logger := config.Discard(opts.Logger)

	ref := &programRef{}
	model := NewModel(opts.Engine, opts.Settings, opts.SettingsPath, ref, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)

	// Store program reference for goroutine sends
	ref.Set(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if opts.SettingsPath != "" || opts.StackPath != "" {
		startWatcher(ctx, opts.SettingsPath, opts.StackPath, ref, logger)
	}

	_, err := p.Run()
	ref.Clear()
	return err
}

// startWatcher forwards file changes to the program until ctx is done. A
// watcher that cannot start is logged and skipped.
func startWatcher(ctx context.Context, settingsPath, stackPath string, ref *programRef, logger *slog.Logger) {
	w, err := watcher.New(settingsPath, stackPath, logger)
	if err != nil {
		logger.Warn("file watcher unavailable", "error", err)
		return
	}
	if err := w.Start(); err != nil {
		logger.Warn("file watcher unavailable", "error", err)
		w.Stop()
		return
	}

	go func() {
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.Events():
				ref.Send(FileChangedMsg{Event: ev})
			}
		}
	}()
}
