package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flagpin/internal/flag"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flags in a store",
		Long: `List every live flag in a SQLite flag store, sorted by key.

Deleted flags are not shown.

Example:
  flagpin list --db ./flags.db
  flagpin list --db ./flags.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	st, err := openStore(out, opts.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	all, err := st.All(ctx)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeGeneric, "failed to list flags", err)
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]flag.Record, 0, len(keys))
	var b strings.Builder
	for _, k := range keys {
		rec := all[k]
		records = append(records, rec)

		served := "?"
		if v, err := rec.OffValue(); err == nil {
			served = canonicalString(v)
		}
		state := "off"
		if rec.On {
			state = "on"
		}
		fmt.Fprintf(&b, "%s\tv%d\t%s\t%s\n", rec.Key, rec.Version, state, served)
	}
	if len(keys) == 0 {
		b.WriteString("No flags found.\n")
	}

	return out.Success(b.String(), records)
}
