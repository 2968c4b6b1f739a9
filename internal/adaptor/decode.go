package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"civic-report/pkg/apperror"
	"civic-report/pkg/storage"
)

const (
	msgInvalidBody = "Invalid request body"
	msgNotImage    = "Not an image! Please upload only images"
)

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.Validation(fmt.Sprintf("Request body too large (max %d bytes)", maxErr.Limit))
	}
	return apperror.Validation(msgInvalidBody)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseMultipart bounds the body and parses the form
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.Validation(fmt.Sprintf("File too large (max %d MB)", maxBytes>>20))
		}
		return apperror.Validation(msgInvalidBody)
	}
	return nil
}

// formImage returns the sniffed image in field, or nil when none was sent
func formImage(r *http.Request, field string) (*storage.Image, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Validation(msgInvalidBody)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperror.Internal("failed to read upload", err)
	}

	img, err := storage.SniffImage(data)
	if errors.Is(err, storage.ErrNotImage) {
		return nil, apperror.Validation(msgNotImage)
	}
	if err != nil {
		return nil, apperror.Internal("failed to inspect upload", err)
	}
	return img, nil
}

// formString returns a pointer to the form value, or nil when absent
func formString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
