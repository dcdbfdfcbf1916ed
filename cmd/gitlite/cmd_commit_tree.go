package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/odvcencio/gitlite/pkg/repo"
	"github.com/spf13/cobra"
)

func newCommitTreeCmd() *cobra.Command {
	var parents []string
	var message string
	var author string
	var date int64
	var sign bool
	var signKey string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> [-p <parent>]... -m <message>",
		Short: "Create a commit object for a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("commit-tree: message is required (-m)")
			}
			treeHash, err := object.ResolveName(args[0])
			if err != nil {
				return err
			}
			parentHashes := make([]object.Hash, 0, len(parents))
			for _, p := range parents {
				h, err := object.ResolveName(p)
				if err != nil {
					return err
				}
				parentHashes = append(parentHashes, h)
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			if _, err := r.Store.ReadTree(treeHash); err != nil {
				return err
			}

			ident, err := commandIdent(r, author, date)
			if err != nil {
				return err
			}
			commit, err := object.BuildCommit(object.CommitInfo{
				Tree:    treeHash,
				Parents: parentHashes,
				Author:  ident,
				Message: message,
			})
			if err != nil {
				return err
			}

			if sign || strings.TrimSpace(signKey) != "" {
				keyPath := signKey
				if strings.TrimSpace(keyPath) == "" {
					keyPath = r.Config.User.SigningKey
				}
				signer, _, err := newSSHSigner(keyPath)
				if err != nil {
					return err
				}
				if commit, err = object.SignCommit(commit, signer); err != nil {
					return err
				}
			}

			var h object.Hash
			err = withLock(cmd.Context(), r, func() error {
				h, err = r.Store.Write(commit)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit digest (repeatable)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", `author as "Name <email>" (defaults to user.name and user.email)`)
	cmd.Flags().Int64Var(&date, "date", 0, "timestamp in seconds since the epoch, recorded as UTC (defaults to now)")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with the configured SSH key")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "SSH private key to sign with (implies --sign)")
	return cmd
}

// commandIdent builds an identity from an optional "Name <email>" override,
// falling back to the repository config.
func commandIdent(r *repo.Repo, override string, unix int64) (object.Ident, error) {
	when := time.Now()
	if unix != 0 {
		when = time.Unix(unix, 0).UTC()
	}
	ident := r.Config.Ident(when)
	if strings.TrimSpace(override) == "" {
		return ident, nil
	}
	name, email, err := parseIdentity(override)
	if err != nil {
		return object.Ident{}, err
	}
	ident.Name, ident.Email = name, email
	return ident, nil
}

func parseIdentity(s string) (name, email string, err error) {
	s = strings.TrimSpace(s)
	lt := strings.IndexByte(s, '<')
	gt := strings.LastIndexByte(s, '>')
	if lt < 0 || gt < lt || gt != len(s)-1 {
		return "", "", fmt.Errorf("identity %q: want \"Name <email>\"", s)
	}
	name = strings.TrimSpace(s[:lt])
	email = strings.TrimSpace(s[lt+1 : gt])
	if name == "" || email == "" || strings.ContainsAny(name+email, "<>\n") {
		return "", "", fmt.Errorf("identity %q: want \"Name <email>\"", s)
	}
	return name, email, nil
}
