// Package cli implements the topstack CLI commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/topstack/topstack/internal/tui"
)

var (
	flagLogLevel  string
	flagEphemeral bool
)

var rootCmd = &cobra.Command{
	Use:   "topstack",
	Short: "A todo list that shows you one thing at a time",
	Long: `topstack keeps your todos as a stack. The newest active todo sits on
top and is the only one the main screen shows; the full list and the
archive of finished todos are one keystroke away.

Run without arguments to open the interactive UI.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runTUI,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error); also logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "keep the stack in memory only")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(tui.Options{
		Engine:       a.engine,
		Settings:     a.settings,
		SettingsPath: a.settingsPath,
		StackPath:    a.store.WatchPath(),
		Logger:       a.logger,
	})
}
