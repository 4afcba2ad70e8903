// Package server implements the feed daemon: it watches a directory for
// new images, paces them through a deduplicated pending queue, and pushes
// notifications to connected viewers over websockets.
package server

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ImageInfo describes one file discovered under the watch directory. Path
// is relative to the watch directory and uses forward slashes, matching
// how the file is addressed under /static/.
type ImageInfo struct {
	Path     string
	Filename string
	ModTime  time.Time
}

// Scan walks dir recursively and returns every regular file, newest
// modification time first. A missing directory yields an empty result,
// not an error; the collector may simply not have downloaded anything yet.
func Scan(dir string) ([]ImageInfo, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var images []ImageInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Files can vanish mid-scan while the collector rewrites them.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		images = append(images, ImageInfo{
			Path:     filepath.ToSlash(rel),
			Filename: d.Name(),
			ModTime:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].ModTime.After(images[j].ModTime)
	})
	return images, nil
}
