package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flagpin/internal/flag"
	"github.com/roach88/flagpin/internal/override"
	"github.com/roach88/flagpin/internal/scenario"
	"github.com/roach88/flagpin/internal/sequence"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Database string
}

// ApplyResult is the JSON payload of the apply command.
type ApplyResult struct {
	File    string                `json:"file"`
	Applied int                   `json:"applied"`
	Trace   []scenario.TraceEvent `json:"trace"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <file>",
		Short: "Apply override steps to a flag store",
		Long: `Apply the steps of a YAML or CUE scenario file to a SQLite flag store.

Versions continue from the highest version already in the store, so
overrides applied now replace whatever an earlier run wrote. Expectations
in the file are ignored; use "flagpin test" to check them.

Example:
  flagpin apply --db ./flags.db ./overrides.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runApply(opts *ApplyOptions, file string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	sc, err := scenario.Load(file)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load "+file, err)
	}

	st, err := openStore(out, opts.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	high, err := st.MaxVersion(ctx)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStoreOpen, "failed to read store version", err)
	}
	logger.Debug("resuming versions", "after", high)

	ov := override.New(st,
		override.WithSequencer(sequence.NewAt(high)),
		override.WithLogger(logger),
	)

	trace, err := scenario.Apply(ctx, ov, sc.Steps)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeApplyFailed, fmt.Sprintf("applied %d of %d steps", len(trace), len(sc.Steps)), err)
	}
	logger.Info("overrides applied", "file", file, "steps", len(trace), "version", ov.Sequencer().Current())

	var b strings.Builder
	for _, e := range trace {
		b.WriteString(describeEvent(e))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Applied %d step(s) from %s\n", len(trace), file)

	return out.Success(b.String(), ApplyResult{File: file, Applied: len(trace), Trace: trace})
}

// describeEvent renders one applied step for text output.
func describeEvent(e scenario.TraceEvent) string {
	if e.Type == scenario.EventDelete {
		return fmt.Sprintf("v%d delete %s", e.Version, e.Key)
	}
	served := "?"
	if e.OffVariation < len(e.Variations) {
		served = canonicalString(e.Variations[e.OffVariation])
	}
	return fmt.Sprintf("v%d %s %s = %s", e.Version, e.Op, e.Key, served)
}

func canonicalString(v flag.Value) string {
	b, err := flag.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
