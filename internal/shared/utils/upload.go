package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
)

var ErrFileTooLarge = errors.New("uploaded file is too large")

// ReadFormFile reads an uploaded part fully, refusing anything over max bytes.
func ReadFormFile(fh *multipart.FileHeader, max int64) ([]byte, error) {
	if fh.Size > max {
		return nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > max {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
