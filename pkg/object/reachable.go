package object

import (
	"fmt"
	"sort"
	"strings"
)

// ReachableSet returns all object hashes reachable from roots by following
// object references, plus the referenced hashes that are not in the store.
// Submodule entries point outside the store and are not followed.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]struct{}, []Hash, error) {
	roots = uniqueNormalizedHashes(roots)
	out := make(map[Hash]struct{}, len(roots))
	missing := make(map[Hash]struct{})

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[h]; ok {
			continue
		}
		if !s.Has(h) {
			missing[h] = struct{}{}
			continue
		}
		out[h] = struct{}{}

		obj, err := s.Read(h)
		if err != nil {
			return nil, nil, fmt.Errorf("reachable set: %w", err)
		}
		stack = append(stack, References(obj)...)
	}

	missingList := make([]Hash, 0, len(missing))
	for h := range missing {
		missingList = append(missingList, h)
	}
	sort.Slice(missingList, func(i, j int) bool { return missingList[i] < missingList[j] })
	return out, missingList, nil
}

// References lists the digests an object points at. Absent headers, such as
// a commit without a tree line, contribute nothing.
func References(obj Object) []Hash {
	switch o := obj.(type) {
	case *Tag:
		return appendRefs(nil, o.Target())
	case *Commit:
		refs := appendRefs(make([]Hash, 0, 1+len(o.Parents())), o.TreeHash())
		return appendRefs(refs, o.Parents()...)
	case *Tree:
		refs := make([]Hash, 0, len(o.entries))
		for _, e := range o.entries {
			if e.Mode == TreeModeSubmodule {
				continue
			}
			refs = append(refs, e.Hash)
		}
		return refs
	}
	return nil
}

func appendRefs(refs []Hash, hs ...Hash) []Hash {
	for _, h := range hs {
		if h != "" {
			refs = append(refs, h)
		}
	}
	return refs
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.ToLower(strings.TrimSpace(string(h))))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
