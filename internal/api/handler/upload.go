package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
)

const uploadField = "file"

var errMissingFile = errors.New("multipart field \"file\" is required")

type upload struct {
	data     []byte
	mimeType string
}

// readUpload parses a multipart body capped at maxBytes and returns the
// "file" part.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("upload exceeds %d bytes", maxBytes)
		}
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	f, hdr, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errMissingFile
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	mt := hdr.Header.Get("Content-Type")
	if mt == "" || mt == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(hdr.Filename)); byExt != "" {
			mt = byExt
		} else {
			mt = http.DetectContentType(data)
		}
	}
	return &upload{data: data, mimeType: mt}, nil
}
