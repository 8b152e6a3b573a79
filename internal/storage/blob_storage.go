package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ignatzorin/portfolio-backend/internal/store"
)

// ErrInvalidPath возвращается для путей, выходящих за пределы бакета.
var ErrInvalidPath = errors.New("storage: недопустимый путь")

// BlobStorage: локальное файловое хранилище с бакетами-подкаталогами.
type BlobStorage struct {
	rootPath       string
	publicBaseURL  string
	maxUploadBytes int64
}

var _ store.Blobs = (*BlobStorage)(nil)

// NewBlobStorage создаёт файловое хранилище и каталоги бакетов.
func NewBlobStorage(rootPath, publicBaseURL string, maxUploadBytes int64, buckets ...string) (*BlobStorage, error) {
	for _, bucket := range buckets {
		dir := filepath.Join(rootPath, bucket)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", dir, err)
		}
	}

	return &BlobStorage{
		rootPath:       rootPath,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxUploadBytes: maxUploadBytes,
	}, nil
}

// Root возвращает корневой каталог для раздачи файлов.
func (s *BlobStorage) Root() string {
	return s.rootPath
}

// Upload атомарно сохраняет объект: запись во временный файл и переименование.
func (s *BlobStorage) Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	targetPath, err := s.resolve(bucket, objectPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("storage: не удалось создать каталог владельца: %w", err)
	}

	tempPath := targetPath + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return nil
}

// PublicURL возвращает публичную ссылку на объект.
func (s *BlobStorage) PublicURL(bucket, objectPath string) (string, error) {
	if _, err := s.resolve(bucket, objectPath); err != nil {
		return "", err
	}

	clean := path.Clean(objectPath)
	segments := strings.Split(clean, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return s.publicBaseURL + "/media/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/"), nil
}

// resolve проверяет бакет и путь объекта и возвращает путь на диске.
func (s *BlobStorage) resolve(bucket, objectPath string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("%w: бакет %q", ErrInvalidPath, bucket)
	}

	if objectPath == "" || strings.Contains(objectPath, `\`) || path.IsAbs(objectPath) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}

	clean := path.Clean(objectPath)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}

	return filepath.Join(s.rootPath, bucket, filepath.FromSlash(clean)), nil
}
