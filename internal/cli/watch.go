package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sdlshim/sdlshim/internal/banlist"
	"github.com/sdlshim/sdlshim/internal/policy"
)

func newBanlistWatchCmd() *cobra.Command {
	var configPath string
	var candidates []string
	var outputJSON bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the ban list and show each change as it lands",
		Long: `Watch the ban list file and reprint it whenever it changes.

This is an operator convenience for editing the list while a shimmed game
is running; the shim itself never watches anything and picks edits up by
re-statting the file on each intercepted call.

The watch covers the file's directory, because editors and 'sdlshim
banlist add' replace the file by rename rather than writing in place.`,
		Example: `  # Watch the list
  sdlshim banlist watch

  # Re-evaluate two executables on every change
  sdlshim banlist watch --candidate /usr/games/paledolmen --candidate ~/SteamApp376210`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, ok := locatorFor(configPath).BanlistPath()
			if !ok {
				return fmt.Errorf("no usable config base: set $HOME, $XDG_CONFIG_HOME, or --config")
			}

			list := banlist.New(locatorFor(configPath))

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
			}

			w := cmd.OutOrStdout()
			if !outputJSON {
				fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n\n", path)
			}
			printWatchState(cmd, list, candidates, outputJSON)

			ctx := cmd.Context()
			var pending *time.Timer
			fire := make(chan struct{}, 1)
			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) != filepath.Clean(path) {
						continue
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
						continue
					}
					// Debounce: editors fire several events per save.
					if pending != nil {
						pending.Stop()
					}
					pending = time.AfterFunc(debounce, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				case <-fire:
					printWatchState(cmd, list, candidates, outputJSON)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the ban list file")
	cmd.Flags().StringArrayVar(&candidates, "candidate", nil, "Executable path to re-evaluate on every change (repeatable)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output one JSON object per change")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "Quiet period after a change before reloading")

	return cmd
}

func printWatchState(cmd *cobra.Command, list *banlist.List, candidates []string, outputJSON bool) {
	list.Refresh()
	entries := list.Patterns()

	type verdict struct {
		Candidate string `json:"candidate"`
		Suppress  bool   `json:"suppress"`
		Pattern   string `json:"pattern,omitempty"`
	}
	verdicts := make([]verdict, 0, len(candidates))
	for _, c := range candidates {
		d := policy.Decide(list, c)
		verdicts = append(verdicts, verdict{Candidate: c, Suppress: d.Suppress, Pattern: d.Pattern})
	}

	if outputJSON {
		if entries == nil {
			entries = []string{}
		}
		_ = printJSON(cmd, struct {
			TS       string    `json:"ts"`
			Entries  []string  `json:"entries"`
			Verdicts []verdict `json:"verdicts,omitempty"`
		}{
			TS:       time.Now().UTC().Format(time.RFC3339),
			Entries:  entries,
			Verdicts: verdicts,
		})
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "--- %s ---\n", time.Now().Format("15:04:05"))
	if len(entries) == 0 {
		fmt.Fprintln(w, "(empty)")
	}
	for i, e := range entries {
		fmt.Fprintf(w, "  [%d] %s\n", i, e)
	}
	for _, v := range verdicts {
		if v.Suppress {
			fmt.Fprintf(w, "  %s -> suppress (%s)\n", v.Candidate, v.Pattern)
		} else {
			fmt.Fprintf(w, "  %s -> allow\n", v.Candidate)
		}
	}
	fmt.Fprintln(w)
}
