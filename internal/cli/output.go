package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sdlshim/sdlshim/internal/config"
	"github.com/sdlshim/sdlshim/internal/diaglog"
)

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

// printJSONCompact writes one value per line, for streamed output.
func printJSONCompact(cmd *cobra.Command, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func printYAML(cmd *cobra.Command, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(b))
	return err
}

// locatorFor builds a config locator honoring an explicit --config override.
// CLI commands stay quiet about resolution; diagnostics belong to the shim.
func locatorFor(configPath string) *config.Locator {
	return config.NewLocator(config.LocatorConfig{
		Path: configPath,
		Log:  diaglog.Nop(),
	})
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
