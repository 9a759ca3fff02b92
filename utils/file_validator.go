package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	DefaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}
	DefaultImageMimeTypes  = []string{"image/jpeg", "image/png", "image/webp"}
)

type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

func NewImageValidator(exts, mimes []string, maxSizeMB int) *FileValidator {
	if len(exts) == 0 {
		exts = DefaultImageExtensions
	}
	if len(mimes) == 0 {
		mimes = DefaultImageMimeTypes
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}

	allowedExt := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if ext = strings.TrimSpace(strings.ToLower(ext)); ext != "" {
			allowedExt[ext] = true
		}
	}
	allowedMime := make(map[string]bool, len(mimes))
	for _, m := range mimes {
		if m = strings.TrimSpace(strings.ToLower(m)); m != "" {
			allowedMime[m] = true
		}
	}

	return &FileValidator{
		allowedExt:  allowedExt,
		allowedMime: allowedMime,
		maxSize:     int64(maxSizeMB) << 20,
	}
}

// ValidateFile checks size, extension and the sniffed content type, and
// returns the detected MIME type.
func (v *FileValidator) ValidateFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !v.allowedExt[ext] {
		return "", fmt.Errorf("invalid file extension")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file header")
	}
	if n == 0 {
		return "", fmt.Errorf("empty file")
	}

	detectedMime := strings.ToLower(http.DetectContentType(buffer[:n]))
	if !v.allowedMime[detectedMime] {
		return "", fmt.Errorf("invalid file type")
	}

	return detectedMime, nil
}
