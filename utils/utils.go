package utils

import (
	"mime/multipart"
	"os"
	"strings"
)

// SupportedImageTypes are the uploads imaging can decode.
var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

func IsSupportedImage(header *multipart.FileHeader) bool {
	mimeType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	return SupportedImageTypes[mimeType]
}

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
