package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
)

// Разрешённые типы изображений
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// openImage открывает загруженный файл и проверяет, что это изображение
// по расширению и магическим байтам. Возвращённый файл перемотан в начало.
func openImage(file *multipart.FileHeader) (multipart.File, error) {
	if file.Size == 0 {
		return nil, apperror.Validation("Image file is empty")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return nil, apperror.Validation("Unsupported image format. Allowed: jpg, png, gif, webp")
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperror.Internal(err, "Failed to read image")
	}

	header := make([]byte, 512)
	n, err := src.Read(header)
	if err != nil && err != io.EOF {
		_ = src.Close()
		return nil, apperror.Validation("Failed to read image")
	}

	kind, err := filetype.Match(header[:n])
	if err != nil || kind == filetype.Unknown || !allowedMimeTypes[kind.MIME.Value] {
		_ = src.Close()
		return nil, apperror.Validation("Only image uploads are allowed")
	}

	expectedExt := "." + kind.Extension
	if ext != expectedExt && !(ext == ".jpeg" && expectedExt == ".jpg") {
		_ = src.Close()
		return nil, apperror.Validation(fmt.Sprintf("File extension %s does not match its content (%s)", ext, expectedExt))
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		_ = src.Close()
		return nil, apperror.Internal(err, "Failed to read image")
	}

	return src, nil
}
