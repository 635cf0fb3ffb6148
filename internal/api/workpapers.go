package api

import (
	"context"
	"fmt"

	"github.com/robertdoneill/vensa-go/internal/client"
	"github.com/robertdoneill/vensa-go/internal/models"
)

// Workpapers — операции над рабочими документами.
type Workpapers struct {
	c *client.Client
}

// List возвращает рабочие документы; controlTestID > 0 фильтрует
// по тесту контроля.
func (s *Workpapers) List(ctx context.Context, controlTestID int64, opts *ListOptions) ([]models.Workpaper, error) {
	q := opts.Query()
	if controlTestID > 0 {
		if q == nil {
			q = map[string][]string{}
		}
		q.Set("control_test", fmt.Sprintf("%d", controlTestID))
	}

	var out []models.Workpaper
	if err := s.c.Get(ctx, "/workpapers/", &out, &client.Options{Query: q}); err != nil {
		return nil, err
	}

	return out, nil
}

// Get возвращает один рабочий документ.
func (s *Workpapers) Get(ctx context.Context, id int64) (*models.Workpaper, error) {
	var out models.Workpaper
	if err := s.c.Get(ctx, fmt.Sprintf("/workpapers/%d/", id), &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Create создаёт рабочий документ.
func (s *Workpapers) Create(ctx context.Context, in models.WorkpaperInput) (*models.Workpaper, error) {
	var out models.Workpaper
	if err := s.c.Post(ctx, "/workpapers/", in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Update частично обновляет рабочий документ.
func (s *Workpapers) Update(ctx context.Context, id int64, in models.WorkpaperInput) (*models.Workpaper, error) {
	var out models.Workpaper
	if err := s.c.Patch(ctx, fmt.Sprintf("/workpapers/%d/", id), in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Delete удаляет рабочий документ.
func (s *Workpapers) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/workpapers/%d/", id), nil)
}
