// Package tree reads and writes values in nested map[string]any documents
// addressed by dot-separated paths ("location.city", "images.rooms").
package tree

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Node is one level of a loosely typed document, as produced by encoding/json.
type Node = map[string]any

// ErrPathConflict is returned by Set when an intermediate segment already
// holds a value that is not a mapping.
var ErrPathConflict = errors.New("path conflict")

// ConflictError names the segment that blocked a Set.
type ConflictError struct {
	Path    string
	Segment string
	Found   any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("path conflict at %q in %q: found %T", e.Segment, e.Path, e.Found)
}

func (e *ConflictError) Is(target error) bool { return target == ErrPathConflict }

// Get follows path through nested mappings. ok is false when any segment is
// absent or an intermediate value is not a mapping; a present nil is ok.
func Get(root Node, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	var cur any = root
	for _, seg := range strings.Split(path, ".") {
		obj, isMap := cur.(map[string]any)
		if !isMap {
			return nil, false
		}
		v, exists := obj[seg]
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Set assigns v at path, creating intermediate mappings. An intermediate that
// exists but is neither a mapping nor nil is left untouched and reported as a
// *ConflictError.
func Set(root Node, path string, v any) error {
	if root == nil {
		return errors.New("tree: nil root")
	}
	if path == "" {
		return errors.New("tree: empty path")
	}
	segs := strings.Split(path, ".")
	cur := root
	for i, seg := range segs[:len(segs)-1] {
		switch n := cur[seg].(type) {
		case map[string]any:
			cur = n
		case nil:
			child := make(Node)
			cur[seg] = child
			cur = child
		default:
			return &ConflictError{Path: path, Segment: strings.Join(segs[:i+1], "."), Found: n}
		}
	}
	cur[segs[len(segs)-1]] = v
	return nil
}

// Expand turns a flat bag of dot-path keys into a nested document. Keys are
// applied in lexical order so the outcome does not depend on map iteration.
// Conflicting keys are skipped and returned joined.
func Expand(flat map[string]any) (Node, error) {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Node, len(keys))
	var errs []error
	for _, k := range keys {
		if err := Set(out, k, flat[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}
