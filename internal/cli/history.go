package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackline/trackline/internal/codec"
	"github.com/trackline/trackline/internal/model"
	"github.com/trackline/trackline/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show the event timestamps that touched an entity",
		Long: `Show the bounded, ascending list of event timestamps that touched
one entity. The id uses the key notation, e.g. u:dev, p:prod or
t:prod:00000042.

Example:
  trackline history --db ./trackline.db t:prod:00000001`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	return cmd
}

// historyView is the JSON shape of one entity history.
type historyView struct {
	Subject string  `json:"subject"`
	Events  []int64 `json:"events"`
}

func runHistory(opts *HistoryOptions, rawID string, cmd *cobra.Command) error {
	subject, err := model.ParseID(rawID)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid entity id", err)
	}
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

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	data, err := tx.Get(model.HistoryID(subject).Bytes())
	if err == store.ErrNotFound {
		return formatter.Success(historyView{Subject: subject.String()})
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read history", err)
	}
	history, err := codec.DecodeHistory(data)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to decode history", err)
	}
	slog.Debug("history loaded", "subject", subject.String(), "events", len(history.Events))

	view := historyView{Subject: history.Subject.String(), Events: history.Events}
	if opts.Format == "json" {
		return formatter.Success(view)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d events", view.Subject, len(view.Events))
	for _, ts := range view.Events {
		fmt.Fprintf(&b, "\n  %d", ts)
	}
	return formatter.Success(b.String())
}
