package record

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileRef points at a local file attached to a draft, or at a file the
// backend already stores (URL set, Path empty).
type FileRef struct {
	Path string `json:"path"`
	Name string `json:"name"`
	MIME string `json:"mime"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url,omitempty"`
}

// IsZero reports whether the reference is unset.
func (f FileRef) IsZero() bool {
	return f.Path == "" && f.Name == "" && f.URL == ""
}

// Remote reports whether the file is already stored by the backend.
func (f FileRef) Remote() bool {
	return f.Path == "" && f.URL != ""
}

// Location is the local path, or the URL of a remote file.
func (f FileRef) Location() string {
	if f.Remote() {
		return f.URL
	}
	return f.Path
}

// IsRemoteURL reports whether s is an http(s) URL.
func IsRemoteURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// RemoteFile references a file the backend serves at rawURL.
func RemoteFile(rawURL string) FileRef {
	rawURL = strings.TrimSpace(rawURL)
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = path.Base(u.Path)
	}
	return FileRef{Name: name, URL: rawURL}
}

// HasMIMEPrefix reports whether the detected type starts with prefix, e.g. "image/".
func (f FileRef) HasMIMEPrefix(prefix string) bool {
	return strings.HasPrefix(f.MIME, prefix)
}

// OpenFile stats path and sniffs its content type.
func OpenFile(path string) (FileRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileRef{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return FileRef{}, fmt.Errorf("%s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return FileRef{}, fmt.Errorf("failed to detect type of %s: %w", path, err)
	}
	return FileRef{
		Path: path,
		Name: filepath.Base(path),
		MIME: mt.String(),
		Size: info.Size(),
	}, nil
}

// OpenFiles opens every path in order.
func OpenFiles(paths []string) ([]FileRef, error) {
	out := make([]FileRef, 0, len(paths))
	for _, p := range paths {
		f, err := OpenFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
