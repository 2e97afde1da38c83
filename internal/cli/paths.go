package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdlshim/sdlshim/internal/config"
)

func newPathsCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show the paths and environment the shim would use",
		Long: `Show how the shim resolves its file locations from the current
environment: the ban list, the optional decision log, and the optional
metrics snapshot. Useful for checking what a game launched from this
shell would actually read and write.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := config.NewLocator(config.LocatorConfig{}).Resolve()
			settings := config.SettingsFromEnv()

			type paths struct {
				Banlist       string `json:"banlist"`
				BanlistSource string `json:"banlist_source"`
				BanlistExists bool   `json:"banlist_exists"`
				AuditLog      string `json:"audit_log,omitempty"`
				Metrics       string `json:"metrics,omitempty"`
				LogLevel      string `json:"log_level"`
			}
			p := paths{
				Banlist:       res.Path,
				BanlistSource: string(res.Source),
				AuditLog:      settings.AuditPath,
				Metrics:       settings.MetricsPath,
				LogLevel:      string(settings.LogLevel),
			}
			if res.OK {
				if _, err := os.Stat(res.Path); err == nil {
					p.BanlistExists = true
				}
			}

			if outputJSON {
				return printJSON(cmd, p)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Ban list:  %s (%s)\n", orNone(p.Banlist), p.BanlistSource)
			if p.Banlist != "" && !p.BanlistExists {
				fmt.Fprintln(w, "           missing; shim treats it as empty")
			}
			fmt.Fprintf(w, "Audit log: %s\n", enabledOrOff(p.AuditLog, config.EnvAuditLog))
			fmt.Fprintf(w, "Metrics:   %s\n", enabledOrOff(p.Metrics, config.EnvMetrics))
			fmt.Fprintf(w, "Log level: %s ($%s)\n", p.LogLevel, config.EnvLog)
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")

	return cmd
}

func enabledOrOff(path, env string) string {
	if path == "" {
		return fmt.Sprintf("disabled (set $%s to enable)", env)
	}
	return path
}
