package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/spf13/cobra"
)

func newMktagCmd() *cobra.Command {
	var name string
	var message string
	var tagger string
	var date int64

	cmd := &cobra.Command{
		Use:   "mktag <object> --name <tag> [-m <message>]",
		Short: "Create an annotated tag object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("mktag: tag name is required (--name)")
			}
			target, err := object.ResolveName(args[0])
			if err != nil {
				return err
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			obj, err := r.Store.Read(target)
			if err != nil {
				return err
			}
			ident, err := commandIdent(r, tagger, date)
			if err != nil {
				return err
			}

			tag, err := object.BuildTag(object.TagInfo{
				Target:     target,
				TargetType: obj.Type(),
				Name:       name,
				Tagger:     ident,
				Message:    message,
			})
			if err != nil {
				return err
			}

			var h object.Hash
			err = withLock(cmd.Context(), r, func() error {
				h, err = r.Store.Write(tag)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "tag name")
	cmd.Flags().StringVarP(&message, "message", "m", "", "tag message")
	cmd.Flags().StringVar(&tagger, "tagger", "", `tagger as "Name <email>" (defaults to user.name and user.email)`)
	cmd.Flags().Int64Var(&date, "date", 0, "timestamp in seconds since the epoch, recorded as UTC (defaults to now)")
	return cmd
}
