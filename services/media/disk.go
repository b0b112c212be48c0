// Package mediasvc stores uploaded images on the local disk.
package mediasvc

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core/school"
)

// sniffLen is what http.DetectContentType looks at.
const sniffLen = 512

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

type diskStore struct {
	dir string
}

var _ school.MediaStore = (*diskStore)(nil)

// NewDiskStore keeps files under dir, creating it when missing.
func NewDiskStore(dir string) (school.MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating media dir")
	}
	return &diskStore{dir: dir}, nil
}

// Save copies an uploaded image under a random name and returns that name.
func (s *diskStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.Wrap(err, "reading upload")
	}
	ext, ok := extensions[http.DetectContentType(head[:n])]
	if !ok {
		return "", school.ErrInvalidImage
	}

	name := uuid.New().String() + ext
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "creating media file")
	}
	if _, err = io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), src)); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", errors.Wrap(err, "writing media file")
	}
	return name, errors.Wrap(dst.Close(), "closing media file")
}

// Remove deletes a stored file; unknown names are ignored.
func (s *diskStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "removing media file")
}
