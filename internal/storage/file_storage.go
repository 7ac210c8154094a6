package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage каталог для файлов выгрузки. Запись атомарная: временный файл и rename.
type FileStorage struct {
	rootPath string
	maxBytes int64
}

// NewFileStorage создаёт каталог при необходимости. maxMB <= 0 снимает ограничение.
func NewFileStorage(rootPath string, maxMB int64) (*FileStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}
	return &FileStorage{rootPath: rootPath, maxBytes: maxMB * 1024 * 1024}, nil
}

// Save записывает r в файл name внутри каталога и возвращает полный путь и размер.
func (s *FileStorage) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	targetPath := filepath.Join(s.rootPath, sanitizeFilename(name))
	f, err := os.CreateTemp(s.rootPath, ".export-*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	tempPath := f.Name()
	defer f.Close()

	src := r
	if s.maxBytes > 0 {
		src = &io.LimitedReader{R: r, N: s.maxBytes + 1}
	}
	written, err := io.Copy(f, src)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxBytes)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return targetPath, written, nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "export"
	}
	return name
}
