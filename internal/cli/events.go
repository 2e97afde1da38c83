package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdlshim/sdlshim/internal/audit"
	"github.com/sdlshim/sdlshim/internal/config"
)

func newEventsCmd() *cobra.Command {
	var file string
	var opFilter string
	var exeFilter string
	var limit int
	var follow bool
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Read the shim's decision log",
		Long: `Read the decision events shimmed processes append when
SDLSHIM_AUDIT_LOG is set in their environment.

Each event records which executable called SDL_DisableScreenSaver and
whether the call was suppressed, forwarded, or dropped.`,
		Example: `  # Last 20 decisions
  sdlshim events --file /tmp/sdlshim.jsonl

  # Only suppressed calls, as they happen
  sdlshim events --file /tmp/sdlshim.jsonl --op suppressed --follow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = getenvDefault(config.EnvAuditLog, "")
			}
			if file == "" {
				return fmt.Errorf("no decision log: pass --file or set %s", config.EnvAuditLog)
			}
			if opFilter != "" && !isKnownOp(opFilter) {
				return fmt.Errorf("unknown op %q: must be %s, %s, or %s",
					opFilter, audit.OpSuppressed, audit.OpForwarded, audit.OpResolutionFailed)
			}

			keep := func(ev audit.Event) bool {
				if opFilter != "" && ev.Op != opFilter {
					return false
				}
				if exeFilter != "" && ev.Exe != exeFilter {
					return false
				}
				return true
			}

			events, err := audit.ReadFile(file)
			if err != nil {
				if !follow {
					return fmt.Errorf("read decision log: %w", err)
				}
				// In follow mode a missing file just means nothing logged yet.
				events = nil
			}

			var shown []audit.Event
			for _, ev := range events {
				if keep(ev) {
					shown = append(shown, ev)
				}
			}
			if limit > 0 && len(shown) > limit {
				shown = shown[len(shown)-limit:]
			}
			for _, ev := range shown {
				printEvent(cmd, ev, outputJSON)
			}

			if !follow {
				return nil
			}

			follower, err := audit.NewFollower(file, false)
			if err != nil {
				return fmt.Errorf("follow decision log: %w", err)
			}
			ctx := cmd.Context()
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					newEvents, err := follower.Poll()
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "poll decision log: %v\n", err)
						continue
					}
					for _, ev := range newEvents {
						if keep(ev) {
							printEvent(cmd, ev, outputJSON)
						}
					}
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Decision log path (default: $"+config.EnvAuditLog+")")
	cmd.Flags().StringVar(&opFilter, "op", "", "Only show one outcome: suppressed, forwarded, or resolution_failed")
	cmd.Flags().StringVar(&exeFilter, "exe", "", "Only show events from one executable path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Only show the last N matching events")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep reading as events are appended")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output raw JSON events")

	return cmd
}

func isKnownOp(op string) bool {
	switch op {
	case audit.OpSuppressed, audit.OpForwarded, audit.OpResolutionFailed:
		return true
	default:
		return false
	}
}

func printEvent(cmd *cobra.Command, ev audit.Event, outputJSON bool) {
	if outputJSON {
		_ = printJSONCompact(cmd, ev)
		return
	}
	w := cmd.OutOrStdout()
	line := fmt.Sprintf("%s  pid=%d  %s  %s", ev.TS, ev.PID, ev.Op, ev.Exe)
	if ev.Pattern != "" {
		line += fmt.Sprintf("  (matched %q)", ev.Pattern)
	}
	fmt.Fprintln(w, line)
}
