package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

const DefaultImageMaxBytes int64 = 10 * 1024 * 1024 // 10MB

// ErrInvalidImage marks uploads rejected because of their type or size.
var ErrInvalidImage = errors.New("invalid image")

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ImageExts returns the accepted extensions (for file pickers).
func ImageExts() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
}

type Image struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size"`
	SHA256   string `json:"sha256"`
}

// CheckImage validates an upload candidate without copying it.
func CheckImage(srcPath string, maxBytes int64) (os.FileInfo, error) {
	srcPath = filepath.Clean(strings.TrimSpace(srcPath))
	if srcPath == "" || srcPath == "." {
		return nil, fmt.Errorf("%w: missing path", ErrInvalidImage)
	}
	ext := strings.ToLower(filepath.Ext(srcPath))
	if !imageExts[ext] {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, ext)
	}
	st, err := os.Stat(srcPath)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidImage, srcPath)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultImageMaxBytes
	}
	if st.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrInvalidImage, st.Size(), maxBytes)
	}
	return st, nil
}

// AddImage copies an image into the workspace images directory, named by content hash.
func (s Store) AddImage(srcPath string, maxBytes int64) (Image, error) {
	srcPath = filepath.Clean(strings.TrimSpace(srcPath))
	st, err := CheckImage(srcPath, maxBytes)
	if err != nil {
		return Image{}, err
	}
	if err := os.MkdirAll(s.ImagesDir(), 0o755); err != nil {
		return Image{}, err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return Image{}, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.ImagesDir(), "upload.*.tmp")
	if err != nil {
		return Image{}, err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), src); err != nil {
		_ = tmp.Close()
		return Image{}, err
	}
	if err := tmp.Close(); err != nil {
		return Image{}, err
	}

	sum := hex.EncodeToString(h.Sum(nil))
	ext := strings.ToLower(filepath.Ext(srcPath))
	dst := filepath.Join(s.ImagesDir(), sum[:16]+ext)
	if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(tmpName, dst); err != nil {
			return Image{}, err
		}
	}

	return Image{
		Name:     filepath.Base(srcPath),
		Path:     dst,
		MimeType: mime.TypeByExtension(ext),
		Size:     st.Size(),
		SHA256:   sum,
	}, nil
}
