// Package upload реализует дисковое хранилище загружаемых файлов.
//
// Файлы сохраняются под случайными именами вида file-<uuid>.<ext>,
// оригинальное имя не используется и в файловую систему не попадает.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/zenshift/zenshift-backend/internal/config"
)

// Ошибки, возвращаемые хранилищем.
var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// allowedExts расширения, которые хранилище принимает.
var allowedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".svg":  {},
	".pdf":  {},
}

// Store дисковое хранилище файлов.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore создает хранилище и каталог для файлов, если его еще нет.
func NewStore(cfg config.Upload) (*Store, error) {
	const op = "upload.NewStore"

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{
		dir:     cfg.UploadDir,
		maxSize: cfg.MaxUploadSize,
	}, nil
}

// Dir возвращает каталог хранилища для настройки отдачи статики.
func (s *Store) Dir() string {
	return s.dir
}

// Save сохраняет файл и возвращает сгенерированное имя.
// Размер проверяется по фактически записанным байтам, а не по заголовку.
func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	const op = "upload.Save"

	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExts[ext]; !ok {
		return "", fmt.Errorf("%s: %w", op, ErrUnsupportedType)
	}

	name := fmt.Sprintf("file-%s%s", uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if written > s.maxSize {
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", op, ErrTooLarge)
	}

	return name, nil
}
