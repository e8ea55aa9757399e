package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackline/trackline/internal/codec"
	"github.com/trackline/trackline/internal/model"
	"github.com/trackline/trackline/internal/store"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Since int64
	Limit int
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List committed events in chronological order",
		Long: `List the durable event log in chronological order.

Each line is one committed transaction: its millisecond timestamp, the
entity that set it off, and the per-entity operations it applied.

Example:
  trackline events --db ./trackline.db
  trackline events --db ./trackline.db --since 1700000000000 --limit 50`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Since, "since", 0, "only events at or after this millisecond timestamp")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many events (0 = all)")

	return cmd
}

// eventView is the JSON shape of one event.
type eventView struct {
	Timestamp   int64            `json:"timestamp"`
	Originator  string           `json:"originator"`
	Transitions []transitionView `json:"transitions"`
}

type transitionView struct {
	Entity string   `json:"entity"`
	Ops    []string `json:"ops"`
}

func runEvents(opts *EventsOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	db, err := store.Open(cfg.StorePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	tx, err := db.Read()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open read transaction", err)
	}
	defer tx.Close()

	prefix := model.EventScanPrefix().Bytes()
	start := model.EventID(opts.Since).Bytes()
	var views []eventView
	var scanErr error
	err = tx.Range(start, func(key, value []byte) bool {
		if !bytes.HasPrefix(key, prefix) {
			return false
		}
		event, decodeErr := codec.DecodeEvent(value)
		if decodeErr != nil {
			scanErr = decodeErr
			return false
		}
		views = append(views, viewOf(event))
		return opts.Limit == 0 || len(views) < opts.Limit
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read event log", err)
	}
	slog.Debug("event log scanned", "events", len(views), "since", opts.Since)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.Success(views)
	}
	return formatter.Success(renderEvents(views))
}

func viewOf(e *model.Event) eventView {
	v := eventView{
		Timestamp:  e.Timestamp,
		Originator: e.Originator.String(),
	}
	for _, tr := range e.Transitions {
		ops := make([]string, len(tr.Ops))
		for i, op := range tr.Ops {
			ops[i] = op.String()
		}
		v.Transitions = append(v.Transitions, transitionView{Entity: tr.Entity.String(), Ops: ops})
	}
	return v
}

func renderEvents(views []eventView) string {
	if len(views) == 0 {
		return "no events"
	}
	var b strings.Builder
	for i, v := range views {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d originator=%s", v.Timestamp, v.Originator)
		for _, tr := range v.Transitions {
			fmt.Fprintf(&b, "\n  %s %s", tr.Entity, strings.Join(tr.Ops, ","))
		}
	}
	return b.String()
}
