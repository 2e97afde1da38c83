package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdlshim/sdlshim/internal/doctor"
)

func newDoctorCmd() *cobra.Command {
	var configPath string
	var outputJSON bool
	var outputYAML bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check whether this host can run the shim",
		Long: `Probe the host: a usable config base, a readable ban list, and an
SDL2 library the resolver would find.

Inside a preloaded process the shim resolves SDL_DisableScreenSaver with
RTLD_NEXT; this command approximates that from outside by loading the SDL2
library directly. A failed symbol check predicts 'Could not link' lines
from the shim on the same machine.

The exit code is 0 when every check passes and 1 otherwise, for scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := doctor.Run(doctor.Options{Locator: locatorFor(configPath)})

			var exitErr error
			if !rep.Healthy {
				exitErr = &ExitError{code: 1}
			}

			switch {
			case outputJSON:
				b, err := rep.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			case outputYAML:
				b, err := rep.YAML()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(b))
			default:
				fmt.Fprint(cmd.OutOrStdout(), rep.Table())
			}
			return exitErr
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the ban list file")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&outputYAML, "yaml", false, "Output in YAML format")

	return cmd
}
