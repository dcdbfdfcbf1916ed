package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/spf13/cobra"
)

func newMktreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mktree",
		Short: "Build a tree object from ls-tree formatted lines on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readTreeEntries(cmd.InOrStdin())
			if err != nil {
				return err
			}
			tree, err := object.NewTree(entries)
			if err != nil {
				return err
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			var h object.Hash
			err = withLock(cmd.Context(), r, func() error {
				h, err = r.Store.Write(tree)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newLsTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls-tree <tree>",
		Short: "List the entries of a tree object",
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
			tree, err := r.Store.ReadTree(h)
			if err != nil {
				return err
			}
			return writeTreeEntries(cmd.OutOrStdout(), tree.Entries())
		},
	}
}

// writeTreeEntries prints entries as "<mode> SP <type> SP <digest> TAB <name>",
// with the mode zero-padded to six digits.
func writeTreeEntries(w io.Writer, entries []object.TreeEntry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %s %s\t%s\n", padMode(e.Mode), e.ObjectType(), e.Hash, e.Name); err != nil {
			return err
		}
	}
	return nil
}

func padMode(mode string) string {
	if len(mode) >= 6 {
		return mode
	}
	return strings.Repeat("0", 6-len(mode)) + mode
}

// readTreeEntries parses the format written by writeTreeEntries. Blank
// lines are skipped and leading zeros on the mode are dropped.
func readTreeEntries(r io.Reader) ([]object.TreeEntry, error) {
	var entries []object.TreeEntry
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		meta, name, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("mktree: line %d: missing tab before name", lineNo)
		}
		fields := strings.Fields(meta)
		if len(fields) != 3 {
			return nil, fmt.Errorf("mktree: line %d: want <mode> <type> <digest>", lineNo)
		}
		mode := strings.TrimLeft(fields[0], "0")
		h, err := object.ResolveName(fields[2])
		if err != nil {
			return nil, fmt.Errorf("mktree: line %d: %w", lineNo, err)
		}
		e := object.TreeEntry{Mode: mode, Name: name, Hash: h}
		if string(e.ObjectType()) != fields[1] {
			return nil, fmt.Errorf("mktree: line %d: mode %s does not match type %s", lineNo, fields[0], fields[1])
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mktree: read input: %w", err)
	}
	return entries, nil
}
