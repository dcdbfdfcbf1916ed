package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd() *cobra.Command {
	var showType bool
	var pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (<type> | -t | -p) <object>",
		Short: "Print the contents or type of a stored object",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showType && pretty {
				return fmt.Errorf("cat-file: -t and -p are mutually exclusive")
			}
			var want object.ObjectType
			name := args[len(args)-1]
			switch {
			case showType || pretty:
				if len(args) != 1 {
					return fmt.Errorf("cat-file: -t and -p take only an object name")
				}
			case len(args) != 2:
				return fmt.Errorf("cat-file: expected <type> <object>")
			default:
				t, err := object.ParseType(args[0])
				if err != nil {
					return err
				}
				want = t
			}

			h, err := object.ResolveName(name)
			if err != nil {
				return err
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			obj, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, obj.Type())
				return nil
			case pretty:
				return prettyPrint(out, obj)
			}
			if obj.Type() != want {
				return fmt.Errorf("cat-file %s: %w: object is a %s", h, object.ErrTypeMismatch, obj.Type())
			}
			_, err = out.Write(obj.Serialize())
			return err
		},
	}
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object contents")
	return cmd
}

func prettyPrint(w io.Writer, obj object.Object) error {
	if tree, ok := obj.(*object.Tree); ok {
		return writeTreeEntries(w, tree.Entries())
	}
	_, err := w.Write(obj.Serialize())
	return err
}
