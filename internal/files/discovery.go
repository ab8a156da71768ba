package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// passed to its methods resolve against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindTabularFiles lists regular files in dir whose extension matches one of
// exts (case-insensitive, leading dot optional), ordered by file name.
// Subdirectories are not descended into.
func (d *Discovery) FindTabularFiles(dir string, exts []string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	wanted := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[ext] = struct{}{}
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := wanted[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}

		fi := FileInfo{Path: filepath.Join(fullPath, name), Name: name}
		// Stat failures are left for the reader to report against this path.
		if info, err := entry.Info(); err == nil {
			fi.Size = info.Size()
			fi.ModTime = info.ModTime()
		}
		files = append(files, fi)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindFilesByPattern finds files matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolve(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
