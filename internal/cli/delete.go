package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Database string
}

// DeleteResult is the JSON payload of the delete command.
type DeleteResult struct {
	Key     string `json:"key"`
	Version int64  `json:"version"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a flag from a store",
		Long: `Delete a flag by writing a tombstone one version above the store's
highest version. Deleting an unknown key still writes the tombstone.

Example:
  flagpin delete --db ./flags.db new-ui`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDelete(opts *DeleteOptions, key string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	st, err := openStore(out, opts.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	high, err := st.MaxVersion(ctx)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeStoreOpen, "failed to read store version", err)
	}

	version := high + 1
	if err := st.Delete(ctx, key, version); err != nil {
		return out.Fail(ExitCommandError, ErrCodeApplyFailed, fmt.Sprintf("failed to delete %q", key), err)
	}
	logger.Info("flag deleted", "key", key, "version", version)

	return out.Success(fmt.Sprintf("Deleted %s at version %d\n", key, version), DeleteResult{Key: key, Version: version})
}
