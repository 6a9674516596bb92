package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CoverURLPrefix is where covers are served from; Novel.Cover holds
// CoverURLPrefix + name.
const CoverURLPrefix = "/api/covers/"

var (
	ErrCoverNotFound    = errors.New("cover not found")
	ErrUnsupportedCover = errors.New("cover must be a jpeg, png, webp or gif image")
)

var coverExtByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var coverTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// coverName picks a fresh name keeping an image extension derived from the
// upload's filename or, failing that, its content type.
func coverName(filename, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := coverTypeByExt[ext]; !ok {
		mediaType, _, _ := mime.ParseMediaType(contentType)
		e, ok := coverExtByType[mediaType]
		if !ok {
			return "", ErrUnsupportedCover
		}
		ext = e
	}
	return uuid.New().String() + ext, nil
}

// CoverContentType is the content type a cover name is served with.
func CoverContentType(name string) string {
	if ct, ok := coverTypeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func validCoverName(name string) bool {
	return name != "" && name == filepath.Base(name) && !strings.HasPrefix(name, ".")
}

// LocalCoverStore keeps covers in a directory on disk. It is used when no S3
// bucket is configured.
type LocalCoverStore struct {
	dir string
}

func NewLocalCoverStore(dir string) (*LocalCoverStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cover dir: %w", err)
	}
	return &LocalCoverStore{dir: dir}, nil
}

func (s *LocalCoverStore) Put(ctx context.Context, filename string, body io.Reader, contentType string) (string, error) {
	name, err := coverName(filename, contentType)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

func (s *LocalCoverStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !validCoverName(name) {
		return nil, "", ErrCoverNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrCoverNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return f, CoverContentType(name), nil
}

func (s *LocalCoverStore) Delete(ctx context.Context, name string) error {
	if !validCoverName(name) {
		return ErrCoverNotFound
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
