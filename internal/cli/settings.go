package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/topstack/topstack/internal/config"
	"github.com/topstack/topstack/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show settings",
	Long: `Show the settings stored in ~/.topstack/settings.yaml.

Keys:
  ` + strings.Join(config.SettingKeys, "\n  "),
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GlobalSettingsFile()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}
	settings, err := config.LoadSettingsFile(path)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n\n", styleLabel.Render("#"), styleLabel.Render(path))
	fmt.Fprint(out, styleValue.Render(strings.TrimRight(string(data), "\n"))+"\n")
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	key, value := args[0], args[1]
	if err := config.SetSetting(settings, key, value); err != nil {
		return err
	}
	if err := config.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", styleSuccess.Render("✓"), key, value)
	if key == "storage.backend" && value == models.BackendMemory {
		fmt.Fprintln(cmd.OutOrStdout(), styleHint.Render("  memory storage is not kept between runs"))
	}
	return nil
}
