// Package storage persists uploaded images and hands back references that
// clients can dereference directly.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"civic-report/pkg/utils"

	"github.com/gabriel-vasile/mimetype"
)

var ErrNotImage = errors.New("not an image")

// Store writes objects under a folder and returns their public reference.
type Store interface {
	Save(ctx context.Context, folder, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Image is a sniffed upload ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// SniffImage detects the content type from the bytes, not the client's
// header, and rejects anything that is not an image.
func SniffImage(data []byte) (*Image, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrNotImage
	}
	return &Image{
		Data:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}, nil
}

// Uploader names and stores images.
type Uploader struct {
	store Store
}

func NewUploader(store Store) *Uploader {
	return &Uploader{store: store}
}

// Upload stores img under folder with a unique name derived from prefix.
func (u *Uploader) Upload(ctx context.Context, folder, prefix string, img *Image) (string, error) {
	name := utils.GenerateFileName(prefix, img.Extension)
	ref, err := u.store.Save(ctx, folder, name, img.ContentType, bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("store %s/%s: %w", folder, name, err)
	}
	return ref, nil
}

// Remove deletes a previously stored object by reference.
func (u *Uploader) Remove(ctx context.Context, ref string) error {
	return u.store.Delete(ctx, ref)
}
