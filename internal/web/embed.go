// Package web embeds the single-page UI served at "/".
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"sync"
)

// IndexFile is the page served at the root path.
const IndexFile = "index.html"

//go:embed static
var embeddedFS embed.FS

var (
	subOnce sync.Once
	subFS   fs.FS
)

// GetFS returns the embedded assets rooted at the static directory, so
// callers can open "index.html" directly.
func GetFS() fs.FS {
	subOnce.Do(func() {
		sub, err := fs.Sub(embeddedFS, "static")
		if err != nil {
			panic("web: static directory missing from embed: " + err.Error())
		}
		subFS = sub
	})
	return subFS
}

// GetHTTPFS returns the embedded assets as an http.FileSystem.
func GetHTTPFS() http.FileSystem {
	return http.FS(GetFS())
}

// ReadIndex returns the contents of index.html.
func ReadIndex() ([]byte, error) {
	return fs.ReadFile(GetFS(), IndexFile)
}

// ListEmbeddedFiles returns every embedded file path, for debugging.
func ListEmbeddedFiles() []string {
	var files []string
	_ = fs.WalkDir(GetFS(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files
}
