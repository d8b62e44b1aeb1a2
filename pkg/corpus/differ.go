// Package corpus handles the on-disk article corpus: mirrored input/output
// directory trees of one-JSON-file-per-article, and the delta computation
// that makes reruns idempotent.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Pending returns the relative paths of JSON files present under inputRoot
// but absent under outputRoot, in lexicographic order. The order is stable so
// repeated runs process items in the same sequence and partial runs resume
// where they left off. An item is never reselected once its output path
// exists, regardless of content changes.
func Pending(inputRoot, outputRoot string) ([]string, error) {
	inputs, err := listJSON(inputRoot)
	if err != nil {
		return nil, fmt.Errorf("listing input corpus: %w", err)
	}
	outputs, err := listJSON(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("listing output corpus: %w", err)
	}

	pending := make([]string, 0, len(inputs))
	for rel := range inputs {
		if !outputs[rel] {
			pending = append(pending, rel)
		}
	}
	sort.Strings(pending)
	return pending, nil
}

// listJSON maps relative paths of all *.json files under root. A missing
// root is treated as an empty corpus, not an error, so the first run against
// a fresh output directory selects everything.
func listJSON(root string) (map[string]bool, error) {
	found := map[string]bool{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		found[filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	return found, nil
}
