package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robertdoneill/vensa-go/internal/models"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// FileStore — файловая реализация Store: JSON-документ с двумя
// полями по заданному пути. Пишется через временный файл и rename,
// чтобы параллельный Load не увидел обрезанный документ.
type FileStore struct {
	path string
}

// NewFileStore создаёт хранилище по указанному пути.
// Файл и каталог создаются лениво при первом Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// fileDoc — формат на диске; ключи разнесены, как в браузерном
// key-value хранилище исходного дашборда.
type fileDoc struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Save сохраняет пару целиком.
func (s *FileStore) Save(pair models.TokenPair) error {
	const op = "credentials.file.Save"

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	data, err := json.Marshal(fileDoc{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	return nil
}

// Load читает сохранённую пару. Любая проблема чтения или разбора
// трактуется как отсутствие сохранённых токенов.
func (s *FileStore) Load() (models.TokenPair, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return models.TokenPair{}, nil
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.TokenPair{}, nil
	}

	return models.TokenPair{
		Access:  doc.AccessToken,
		Refresh: doc.RefreshToken,
	}, nil
}

// Clear удаляет файл с токенами; отсутствие файла — не ошибка.
func (s *FileStore) Clear() error {
	const op = "credentials.file.Clear"

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	return nil
}
