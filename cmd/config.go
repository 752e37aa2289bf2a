package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xvierd/wellflow/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"path":   app.configPath,
				"config": configValues(app.config),
			})
		}
		printConfig(cmd.OutOrStdout(), app.configPath, app.config)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), app.configPath)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one config value",
	Long: `Change one config value, e.g. "wellflow config set ledger.daily_goal 90".
The file is only written when the new configuration is valid. Changes take
effect on the next run.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.SetValue(app.configPath, args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), configValues(cfg))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

// configValues flattens cfg to its file keys.
func configValues(cfg *config.Config) map[string]any {
	return map[string]any{
		"ledger.daily_goal":         cfg.Ledger.DailyGoal,
		"focus.default_duration":    cfg.Focus.DefaultDuration.String(),
		"focus.default_break_type":  cfg.Focus.DefaultBreakType,
		"focus.skip_trailing_break": cfg.Focus.SkipTrailingBreak,
		"notifications.enabled":     cfg.Notifications.Enabled,
		"notifications.sound":       cfg.Notifications.Sound,
		"mcp.enabled":               cfg.MCP.Enabled,
		"storage.data_dir":          cfg.Storage.DataDir,
		"storage.backend":           cfg.Storage.Backend,
		"log.level":                 cfg.Log.Level,
		"theme.color_focus":         cfg.Theme.ColorFocus,
		"theme.color_break":         cfg.Theme.ColorBreak,
		"theme.color_paused":        cfg.Theme.ColorPaused,
		"theme.color_title":         cfg.Theme.ColorTitle,
		"theme.color_help":          cfg.Theme.ColorHelp,
	}
}

func printConfig(w io.Writer, path string, cfg *config.Config) {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	fmt.Fprintf(w, "%s %s\n\n", boldText("Config"), dimText(path))
	fmt.Fprintf(w, "  Daily goal:          %d XP\n", cfg.Ledger.DailyGoal)
	fmt.Fprintf(w, "  Focus duration:      %s\n", formatMinutes(cfg.Focus.DefaultDuration.Minutes()))
	fmt.Fprintf(w, "  Break type:          %s\n", cfg.Focus.DefaultBreakType)
	fmt.Fprintf(w, "  Skip trailing break: %s\n", onOff(cfg.Focus.SkipTrailingBreak))
	fmt.Fprintf(w, "  Notifications:       %s (sound %s)\n", onOff(cfg.Notifications.Enabled), onOff(cfg.Notifications.Sound))
	fmt.Fprintf(w, "  MCP server:          %s\n", onOff(cfg.MCP.Enabled))
	fmt.Fprintf(w, "  Storage:             %s in %s\n", cfg.Storage.Backend, cfg.Storage.DataDir)
	fmt.Fprintf(w, "  Log level:           %s\n", cfg.Log.Level)
}
