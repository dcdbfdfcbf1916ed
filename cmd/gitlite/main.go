package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/odvcencio/gitlite/pkg/logging"
	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/odvcencio/gitlite/pkg/repo"
	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

// logLevel is bound to the root --log-level flag. Subcommands built on their
// own, as in tests, see the empty value, which also logs nothing.
var logLevel string

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gitlite:", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gitlite",
		Short:         "Minimal content-addressed object store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", logging.LevelNone, "log level: debug, info, warn, error or none")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newMktreeCmd())
	root.AddCommand(newLsTreeCmd())
	root.AddCommand(newCommitTreeCmd())
	root.AddCommand(newMktagCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newVerifyCommitCmd())
	return root
}

// exitCode maps the error taxonomy onto process exit statuses.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, object.ErrNotFound):
		return 3
	case errors.Is(err, object.ErrCorruptData):
		return 4
	case errors.Is(err, object.ErrUnknownType):
		return 5
	case errors.Is(err, repo.ErrInvalidRepository):
		return 6
	}
	return 1
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gitlite", version)
		},
	}
}
