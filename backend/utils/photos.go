package utils

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// SavePhotoPayload writes a base64 photo payload into the uploads directory
// and returns the storage url. Payloads that already carry a url are passed
// through untouched.
func SavePhotoPayload(uploadsDir, filename, mimeType, b64, url string) (string, error) {
	if url != "" {
		return url, nil
	}
	if b64 == "" {
		return "", fmt.Errorf("photo payload has neither base64 data nor url")
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode photo payload: %w", err)
	}

	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return "", err
	}

	ext := mimeExtensions[mimeType]
	if ext == "" {
		ext = filepath.Ext(filename)
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(uploadsDir, name), data, 0o644); err != nil {
		return "", err
	}

	return "/" + strings.TrimPrefix(filepath.ToSlash(filepath.Join("uploads", name)), "/"), nil
}
