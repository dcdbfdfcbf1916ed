package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

const (
	// Tree mode constants, written exactly as git writes them.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeSubmodule  = "160000"
)

const rawHashLen = HashLen / 2

// TreeEntry is one entry of a tree object.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool { return e.Mode == TreeModeDir }

// ObjectType returns the type of object the entry points at.
func (e TreeEntry) ObjectType() ObjectType {
	switch e.Mode {
	case TreeModeDir:
		return TypeTree
	case TreeModeSubmodule:
		return TypeCommit
	}
	return TypeBlob
}

// sortKey orders entries the way git does: directories compare as if their
// name ended in "/".
func (e TreeEntry) sortKey() string {
	if e.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

// Tree is a list of entries, each encoded as
//
//	<mode> SP <name> NUL <20-byte raw digest>
//
// Entries built with NewTree are sorted; a parsed tree keeps the order it
// was stored in so that it re-serializes to the same bytes.
type Tree struct {
	entries []TreeEntry
}

// NewTree validates and sorts a copy of entries.
func NewTree(entries []TreeEntry) (*Tree, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].sortKey() < sorted[j].sortKey()
	})

	seen := make(map[string]struct{}, len(sorted))
	for _, e := range sorted {
		if err := validateTreeEntry(e); err != nil {
			return nil, fmt.Errorf("new tree: %w", err)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("new tree: duplicate entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return &Tree{entries: sorted}, nil
}

func validateTreeEntry(e TreeEntry) error {
	switch e.Mode {
	case TreeModeDir, TreeModeFile, TreeModeExecutable, TreeModeSymlink, TreeModeSubmodule:
	default:
		return fmt.Errorf("unknown mode %q for %q", e.Mode, e.Name)
	}
	if e.Name == "" || e.Name == "." || e.Name == ".." || strings.ContainsAny(e.Name, "/\x00") {
		return fmt.Errorf("invalid entry name %q", e.Name)
	}
	if !ValidHash(string(e.Hash)) {
		return fmt.Errorf("invalid hash %q for %q", e.Hash, e.Name)
	}
	return nil
}

// ParseTree decodes a tree payload.
func ParseTree(data []byte) (*Tree, error) {
	tr := &Tree{}
	seen := make(map[string]struct{})
	for pos := 0; pos < len(data); {
		sp := indexFrom(data, pos, ' ')
		if sp < 0 {
			return nil, corruptf("tree: missing mode separator at offset %d", pos)
		}
		nul := indexFrom(data, sp+1, 0)
		if nul < 0 {
			return nil, corruptf("tree: missing name terminator at offset %d", sp)
		}
		if nul+1+rawHashLen > len(data) {
			return nil, corruptf("tree: truncated digest at offset %d", nul+1)
		}
		e := TreeEntry{
			Mode: string(data[pos:sp]),
			Name: string(data[sp+1 : nul]),
			Hash: Hash(hex.EncodeToString(data[nul+1 : nul+1+rawHashLen])),
		}
		if err := validateTreeEntry(e); err != nil {
			return nil, corruptf("tree: %v", err)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, corruptf("tree: duplicate entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		tr.entries = append(tr.entries, e)
		pos = nul + 1 + rawHashLen
	}
	return tr, nil
}

func (t *Tree) Type() ObjectType { return TypeTree }
func (*Tree) sealed()            {}

// Serialize encodes the entries in their current order.
func (t *Tree) Serialize() []byte {
	var buf bytes.Buffer
	for _, e := range t.entries {
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		// Entries are validated on construction, so the hash always decodes.
		raw, _ := hashBytes(e.Hash)
		buf.Write(raw)
	}
	return buf.Bytes()
}

// Entries returns a copy of the tree's entries.
func (t *Tree) Entries() []TreeEntry {
	return append([]TreeEntry(nil), t.entries...)
}

// Find returns the entry with the given name.
func (t *Tree) Find(name string) (TreeEntry, bool) {
	for _, e := range t.entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}
