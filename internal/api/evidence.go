package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/robertdoneill/vensa-go/internal/client"
	"github.com/robertdoneill/vensa-go/internal/models"
)

// Evidence — операции над свидетельствами (файлами).
type Evidence struct {
	c *client.Client
}

// List возвращает свидетельства; workpaperID > 0 фильтрует по документу.
func (s *Evidence) List(ctx context.Context, workpaperID int64, opts *ListOptions) ([]models.Evidence, error) {
	q := opts.Query()
	if workpaperID > 0 {
		if q == nil {
			q = map[string][]string{}
		}
		q.Set("workpaper", strconv.FormatInt(workpaperID, 10))
	}

	var out []models.Evidence
	if err := s.c.Get(ctx, "/evidence/", &out, &client.Options{Query: q}); err != nil {
		return nil, err
	}

	return out, nil
}

// Get возвращает одно свидетельство.
func (s *Evidence) Get(ctx context.Context, id int64) (*models.Evidence, error) {
	var out models.Evidence
	if err := s.c.Get(ctx, fmt.Sprintf("/evidence/%d/", id), &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Upload загружает файл свидетельства multipart-запросом.
// Content-Type с boundary выставляет multipart.Writer, пайплайн
// заголовок не трогает; тело буферизовано, поэтому прозрачный повтор
// после refresh безопасен и для загрузок.
func (s *Evidence) Upload(ctx context.Context, workpaperID int64, title, filename string, content io.Reader) (*models.Evidence, error) {
	const op = "api.evidence.Upload"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("workpaper", strconv.FormatInt(workpaperID, 10)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := w.WriteField("title", title); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out models.Evidence
	err = s.c.Post(ctx, "/evidence/", nil, &out, &client.Options{
		RawBody:     buf.Bytes(),
		ContentType: w.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// Delete удаляет свидетельство.
func (s *Evidence) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/evidence/%d/", id), nil)
}
