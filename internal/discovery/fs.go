package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoReports indicates that no report files were found during discovery.
var ErrNoReports = errors.New("no report files discovered")

// Reports walks root and returns the paths, relative to root, of every file
// matched by include and not matched by exclude. Both are comma separated
// Ant-style glob lists. Results are sorted lexicographically.
func Reports(root, include, exclude string) ([]string, error) {
	includes, err := compileGlobs(include)
	if err != nil {
		return nil, err
	}
	if len(includes) == 0 {
		return nil, fmt.Errorf("empty include pattern")
	}
	excludes, err := compileGlobs(exclude)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("source directory %q not found", root)
		}
		return nil, fmt.Errorf("stat %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %q is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel := mustRelOrClean(root, path)
		slashed := filepath.ToSlash(rel)
		if matchAny(includes, slashed) && !matchAny(excludes, slashed) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}

	if len(paths) == 0 {
		return nil, ErrNoReports
	}
	sort.Strings(paths)
	return paths, nil
}

// Explicit validates report paths given on the command line and returns them
// in the order given, relative to root where possible and without duplicates.
func Explicit(root string, explicit []string) ([]string, error) {
	seen := make(map[string]struct{})
	resolved := make([]string, 0, len(explicit))
	for _, input := range explicit {
		cleaned := input
		if !filepath.IsAbs(cleaned) {
			cleaned = filepath.Join(root, cleaned)
		}
		info, err := os.Stat(cleaned)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("report %q not found", input)
			}
			return nil, fmt.Errorf("stat %q: %w", input, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("report %q is a directory", input)
		}
		rel := mustRelOrClean(root, cleaned)
		if _, ok := seen[rel]; ok {
			continue
		}
		seen[rel] = struct{}{}
		resolved = append(resolved, rel)
	}
	if len(resolved) == 0 {
		return nil, ErrNoReports
	}
	return resolved, nil
}

// Copier stores a copy of a source file under a relative name.
type Copier interface {
	CopyFile(name, src string) (string, error)
}

// Stage copies every discovered report into dst, keeping paths relative to
// root. Paths outside root are staged as external/<n>-<base>, n being the
// 1-based input position, so two files never share a staged name. It returns
// the staged locations in input order.
func Stage(root string, rel []string, dst Copier) ([]string, error) {
	staged := make([]string, 0, len(rel))
	seen := make(map[string]struct{}, len(rel))
	for i, p := range rel {
		src, name := p, filepath.Clean(p)
		if !filepath.IsAbs(p) {
			src = filepath.Join(root, p)
		}
		if filepath.IsAbs(name) || escapesRoot(name) {
			name = filepath.Join(externalDir, fmt.Sprintf("%d-%s", i+1, filepath.Base(p)))
		}
		name = filepath.ToSlash(name)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("report %q staged twice", p)
		}
		seen[name] = struct{}{}

		out, err := dst.CopyFile(name, src)
		if err != nil {
			return nil, err
		}
		staged = append(staged, out)
	}
	return staged, nil
}

const externalDir = "external"

func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Resolve turns discovered paths back into paths usable from the working
// directory.
func Resolve(root string, rel []string) []string {
	out := make([]string, 0, len(rel))
	for _, p := range rel {
		if filepath.IsAbs(p) {
			out = append(out, p)
			continue
		}
		out = append(out, filepath.Join(root, p))
	}
	return out
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || escapesRoot(rel) {
		return filepath.Clean(path)
	}
	return rel
}
