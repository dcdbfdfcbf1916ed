package main

import (
	"fmt"
	"io"
	"os"

	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/spf13/cobra"
)

func newHashObjectCmd() *cobra.Command {
	var write bool
	var typeName string

	cmd := &cobra.Command{
		Use:   "hash-object [-w] [-t type] <file|->",
		Short: "Compute an object digest and optionally store the object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objType, err := object.ParseType(typeName)
			if err != nil {
				return err
			}

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			obj, err := object.Deserialize(objType, data)
			if err != nil {
				return err
			}

			h := object.HashObject(obj)
			if write {
				r, err := openRepo()
				if err != nil {
					return err
				}
				err = withLock(cmd.Context(), r, func() error {
					h, err = r.Store.Write(obj)
					return err
				})
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the store")
	cmd.Flags().StringVarP(&typeName, "type", "t", string(object.TypeBlob), "object type")
	return cmd
}
