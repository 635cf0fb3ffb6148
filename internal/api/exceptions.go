package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/robertdoneill/vensa-go/internal/client"
	"github.com/robertdoneill/vensa-go/internal/models"
)

// Exceptions — операции над исключениями и их комментариями.
type Exceptions struct {
	c *client.Client
}

// List возвращает исключения; controlTestID > 0 фильтрует по тесту.
func (s *Exceptions) List(ctx context.Context, controlTestID int64, opts *ListOptions) ([]models.Exception, error) {
	q := opts.Query()
	if controlTestID > 0 {
		if q == nil {
			q = map[string][]string{}
		}
		q.Set("control_test", strconv.FormatInt(controlTestID, 10))
	}

	var out []models.Exception
	if err := s.c.Get(ctx, "/exceptions/", &out, &client.Options{Query: q}); err != nil {
		return nil, err
	}

	return out, nil
}

// Get возвращает одно исключение.
func (s *Exceptions) Get(ctx context.Context, id int64) (*models.Exception, error) {
	var out models.Exception
	if err := s.c.Get(ctx, fmt.Sprintf("/exceptions/%d/", id), &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Create создаёт исключение.
func (s *Exceptions) Create(ctx context.Context, in models.ExceptionInput) (*models.Exception, error) {
	var out models.Exception
	if err := s.c.Post(ctx, "/exceptions/", in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Update частично обновляет исключение.
func (s *Exceptions) Update(ctx context.Context, id int64, in models.ExceptionInput) (*models.Exception, error) {
	var out models.Exception
	if err := s.c.Patch(ctx, fmt.Sprintf("/exceptions/%d/", id), in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Delete удаляет исключение.
func (s *Exceptions) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/exceptions/%d/", id), nil)
}

// Notes возвращает комментарии исключения.
func (s *Exceptions) Notes(ctx context.Context, exceptionID int64) ([]models.ExceptionNote, error) {
	q := map[string][]string{"exception": {strconv.FormatInt(exceptionID, 10)}}

	var out []models.ExceptionNote
	if err := s.c.Get(ctx, "/exception-notes/", &out, &client.Options{Query: q}); err != nil {
		return nil, err
	}

	return out, nil
}

// AddNote добавляет комментарий к исключению.
func (s *Exceptions) AddNote(ctx context.Context, in models.ExceptionNoteInput) (*models.ExceptionNote, error) {
	var out models.ExceptionNote
	if err := s.c.Post(ctx, "/exception-notes/", in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}
