// Package discover expands command-line paths into the MusicXML files a
// batch command should process.
package discover

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/moby/patternmatcher"
)

// Sentinel errors for file discovery.
var (
	ErrNoIgnoreFile = errors.New("no ignore file found")
	ErrNoFiles      = errors.New("no MusicXML files found")
)

// IgnoreFile is the name of the per-directory ignore file.
const IgnoreFile = ".scorebindignore"

// Extensions lists the file extensions collected from directories.
var Extensions = []string{".musicxml", ".xml"}

// LoadIgnorePatterns reads IgnoreFile from dir. Returns ErrNoIgnoreFile when
// it does not exist.
func LoadIgnorePatterns(dir string) ([]string, error) {
	patterns, err := readPatternFile(filepath.Join(dir, IgnoreFile))
	if err == nil {
		return patterns, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoIgnoreFile
	}
	return nil, fmt.Errorf("reading %s: %w", IgnoreFile, err)
}

// readPatternFile parses a newline-delimited ignore file, skipping blank
// lines and # comments.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	patterns := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning ignore file: %w", err)
	}
	return patterns, nil
}

// Collect returns the files named by paths. Files are taken as given;
// directories are walked for files with one of Extensions, skipping
// entries matched by ignore (relative to the walked directory). The result
// is sorted and free of duplicates.
func Collect(paths []string, ignore []string) ([]string, error) {
	pm, err := patternmatcher.New(ignore)
	if err != nil {
		return nil, fmt.Errorf("compiling ignore patterns: %w", err)
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(p))
			continue
		}
		found, err := walk(p, pm)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func walk(root string, pm *patternmatcher.PatternMatcher) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		skip, err := pm.MatchesOrParentMatches(rel)
		if err != nil {
			return fmt.Errorf("matching %s: %w", rel, err)
		}
		if skip {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasExtension(path) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return out, nil
}

func hasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(Extensions, ext)
}
