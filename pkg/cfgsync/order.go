package cfgsync

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gammazero/toposort"
)

// OrderFiles validates and deduplicates a file set and returns it in run
// order: a declared path always comes before any declared path nested
// inside it. Copying the ancestor first carries the whole subtree; the
// other way round the ancestor would look already backed up.
func OrderFiles(files []string) ([]string, error) {
	seen := make(map[string]bool, len(files))
	unique := make([]string, 0, len(files))
	for _, f := range files {
		clean, err := cleanRelative(f)
		if err != nil {
			return nil, err
		}
		if seen[clean] {
			continue
		}
		seen[clean] = true
		unique = append(unique, clean)
	}
	sort.Strings(unique)

	// Edge is [2]interface{}: element 0 must come before element 1.
	edges := make([]toposort.Edge, 0)
	for _, f := range unique {
		if parent, ok := nearestAncestor(f, seen); ok {
			edges = append(edges, toposort.Edge{parent, f})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, errors.Wrap(err, "ordering file set")
	}

	ordered := make([]string, 0, len(unique))
	placed := make(map[string]bool, len(unique))
	for _, node := range sorted {
		name, ok := node.(string)
		if !ok {
			return nil, errors.Newf("unexpected type in topological sort result: %T", node)
		}
		if !placed[name] {
			placed[name] = true
			ordered = append(ordered, name)
		}
	}
	// Entries with no nesting relation keep lexical order.
	for _, f := range unique {
		if !placed[f] {
			ordered = append(ordered, f)
		}
	}
	return ordered, nil
}

func cleanRelative(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("file set contains an empty path")
	}
	if filepath.IsAbs(p) {
		return "", errors.Newf("file set path %q must be relative to the home directory", p)
	}
	clean := filepath.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Newf("file set path %q escapes the home directory", p)
	}
	return clean, nil
}

func nearestAncestor(p string, declared map[string]bool) (string, bool) {
	for dir := filepath.Dir(p); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if declared[dir] {
			return dir, true
		}
	}
	return "", false
}
