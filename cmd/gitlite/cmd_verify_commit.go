package main

import (
	"fmt"

	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

func newVerifyCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-commit <commit>",
		Short: "Check the SSH signature on a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := object.ResolveName(args[0])
			if err != nil {
				return err
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			commit, err := r.Store.ReadCommit(h)
			if err != nil {
				return err
			}
			pub, err := object.VerifyCommitSignature(commit)
			if err != nil {
				return fmt.Errorf("verify-commit %s: %w", h, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "good signature from %s key %s\n", pub.Type(), ssh.FingerprintSHA256(pub))
			return nil
		},
	}
}
