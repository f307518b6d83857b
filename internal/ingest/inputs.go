package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"garimpeiro/internal/unpack"
)

// CollectInputs resolves operator arguments into files. Directories are
// walked for containers and documents in lexical order; explicit files are
// kept whatever their extension so they are accounted for as skipped.
func CollectInputs(paths []string, skipFolders []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, raw := range paths {
		path := filepath.Clean(raw)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", raw, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(current string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			name := entry.Name()
			if entry.IsDir() {
				if current != path && (unpack.IsHidden(name) || slices.Contains(skipFolders, name)) {
					return filepath.SkipDir
				}
				return nil
			}
			if unpack.IsHidden(name) {
				return nil
			}
			if unpack.HasExt(name, unpack.ContainerExt) || unpack.HasExt(name, unpack.DocumentExt) {
				add(current)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", raw, err)
		}
	}
	return files, nil
}
