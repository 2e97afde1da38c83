package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdlshim/sdlshim/internal/banlist"
	"github.com/sdlshim/sdlshim/internal/pattern"
	"github.com/sdlshim/sdlshim/internal/policy"
)

func newBanlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "banlist",
		Aliases: []string{"ban"},
		Short:   "Manage the screensaver-suppression ban list",
		Long: `Manage the ban list consulted by the preload shim.

The list is a plain text file with one glob per line. An executable whose
path matches any entry has its SDL_DisableScreenSaver() calls swallowed.
The shim re-reads the file when its modification time changes, so edits
made here take effect on the next intercepted call in already-running
processes.`,
	}

	cmd.AddCommand(newBanlistListCmd())
	cmd.AddCommand(newBanlistAddCmd())
	cmd.AddCommand(newBanlistRemoveCmd())
	cmd.AddCommand(newBanlistTestCmd())
	cmd.AddCommand(newBanlistWatchCmd())

	return cmd
}

func newBanlistListCmd() *cobra.Command {
	var configPath string
	var outputJSON bool
	var outputYAML bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show ban list entries",
		Example: `  # List all entries
  sdlshim banlist list

  # List entries from an explicit file
  sdlshim banlist list --config /tmp/banlist.conf

  # Output as JSON
  sdlshim banlist list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := locatorFor(configPath).BanlistPath()
			if !ok {
				return fmt.Errorf("no usable config base: set $HOME, $XDG_CONFIG_HOME, or --config")
			}

			entries, err := banlist.NewEditor(path).Entries()
			if err != nil {
				return fmt.Errorf("read ban list: %w", err)
			}

			if outputJSON || outputYAML {
				out := struct {
					Path    string   `json:"path" yaml:"path"`
					Entries []string `json:"entries" yaml:"entries"`
				}{Path: path, Entries: entries}
				if out.Entries == nil {
					out.Entries = []string{}
				}
				if outputYAML {
					return printYAML(cmd, out)
				}
				return printJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Ban list: %s\n", path)
			if len(entries) == 0 {
				fmt.Fprintln(w, "No entries")
				fmt.Fprintln(w, "Use 'sdlshim banlist add' to ban an executable")
				return nil
			}
			for i, e := range entries {
				fmt.Fprintf(w, "  [%d] %s\n", i, e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the ban list file (default: resolved from the environment)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&outputYAML, "yaml", false, "Output in YAML format")

	return cmd
}

func newBanlistAddCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Add a ban entry",
		Long: `Add a glob entry to the ban list, creating the file if needed.

Entries match the full executable path as reported by the kernel, so bans
usually either spell out an absolute path or lead with a wildcard.`,
		Example: `  # Ban every Steam app build
  sdlshim banlist add '*/SteamApps/*'

  # Ban one specific binary
  sdlshim banlist add /usr/games/paledolmen`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := args[0]
			path, ok := locatorFor(configPath).BanlistPath()
			if !ok {
				return fmt.Errorf("no usable config base: set $HOME, $XDG_CONFIG_HOME, or --config")
			}

			if err := pattern.Check(entry); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %q has malformed glob syntax and will match literally (%v)\n", entry, err)
			}
			if err := banlist.NewEditor(path).Add(entry); err != nil {
				return fmt.Errorf("add entry: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Entry added: %s\n", entry)
			fmt.Fprintf(cmd.OutOrStdout(), "Ban list: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the ban list file")

	return cmd
}

func newBanlistRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "remove <pattern>",
		Aliases: []string{"rm"},
		Short:   "Remove a ban entry",
		Long: `Remove an entry from the ban list by its exact text.

Use 'sdlshim banlist list' to see the current entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := args[0]
			path, ok := locatorFor(configPath).BanlistPath()
			if !ok {
				return fmt.Errorf("no usable config base: set $HOME, $XDG_CONFIG_HOME, or --config")
			}

			if err := banlist.NewEditor(path).Remove(entry); err != nil {
				return fmt.Errorf("remove entry: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Entry removed: %s\n", entry)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the ban list file")

	return cmd
}

func newBanlistTestCmd() *cobra.Command {
	var configPath string
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "test <executable-path>...",
		Short: "Test which executables the ban list would suppress",
		Long: `Evaluate candidate executable paths against the ban list.

This shows the decision the shim would make inside each process, without
loading anything into it.`,
		Example: `  # Would this binary be suppressed?
  sdlshim banlist test /usr/games/paledolmen

  # Several candidates at once
  sdlshim banlist test ~/.steam/SteamApp376210 /usr/bin/mpv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := banlist.New(locatorFor(configPath))
			list.Refresh()

			type verdict struct {
				Candidate string `json:"candidate"`
				Suppress  bool   `json:"suppress"`
				Pattern   string `json:"pattern,omitempty"`
			}
			verdicts := make([]verdict, 0, len(args))
			for _, candidate := range args {
				d := policy.Decide(list, candidate)
				verdicts = append(verdicts, verdict{Candidate: candidate, Suppress: d.Suppress, Pattern: d.Pattern})
			}

			if outputJSON {
				return printJSON(cmd, verdicts)
			}

			w := cmd.OutOrStdout()
			for _, v := range verdicts {
				if v.Suppress {
					fmt.Fprintf(w, "%s: suppress (matched %q)\n", v.Candidate, v.Pattern)
				} else {
					fmt.Fprintf(w, "%s: allow\n", v.Candidate)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the ban list file")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")

	return cmd
}
