package cli

import (
	"github.com/spf13/cobra"
)

func NewRoot(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sdlshim",
		Short: "sdlshim: SDL screensaver shim control",
		Long: `sdlshim manages the ban list consulted by the SDL screensaver
preload shim and inspects what the shim would do for a given process.

The shim itself is a shared object built from ./cmd/sdlshim-preload and
loaded with LD_PRELOAD; this tool never has to run inside the target
process.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.SetVersionTemplate("sdlshim {{.Version}}\n")

	cmd.AddCommand(newBanlistCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newEventsCmd())
	cmd.AddCommand(newPathsCmd())

	return cmd
}
