package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/flagpin/internal/eval"
	"github.com/roach88/flagpin/internal/flag"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database string
	User     string
}

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	Key            string      `json:"key"`
	User           string      `json:"user"`
	Value          flag.Value  `json:"value"`
	VariationIndex int         `json:"variation_index"`
	Reason         eval.Reason `json:"reason"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <key>",
		Short: "Evaluate a flag for a user",
		Long: `Evaluate a flag from a SQLite flag store.

Without --user an anonymous user with a random key is evaluated.

Exit codes:
  0 - Flag evaluated
  1 - Flag not found or could not be evaluated
  2 - Command error

Example:
  flagpin eval --db ./flags.db new-ui --user alice`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.User, "user", "", "user key (default: anonymous user)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runEval(opts *EvalOptions, key string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	st, err := openStore(out, opts.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	user := eval.AnonymousUser()
	if opts.User != "" {
		user = eval.NewUser(opts.User)
	}

	d, err := eval.New(st, logger).Evaluate(ctx, key, user)
	if errors.Is(err, eval.ErrFlagNotFound) {
		return out.Fail(ExitFailure, ErrCodeUnknownFlag, fmt.Sprintf("flag %q not found", key), nil)
	}
	if err != nil {
		return out.Fail(ExitFailure, ErrCodeEvalFailed, fmt.Sprintf("failed to evaluate %q", key), err)
	}

	text := fmt.Sprintf("%s = %s (variation %d, %s)\n", key, canonicalString(d.Value), d.VariationIndex, d.Reason)
	return out.Success(text, EvalResult{
		Key:            key,
		User:           user.Key,
		Value:          d.Value,
		VariationIndex: d.VariationIndex,
		Reason:         d.Reason,
	})
}
