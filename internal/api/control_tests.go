package api

import (
	"context"
	"fmt"

	"github.com/robertdoneill/vensa-go/internal/client"
	"github.com/robertdoneill/vensa-go/internal/models"
)

// ControlTests — операции над тестами контроля.
type ControlTests struct {
	c *client.Client
}

// List возвращает тесты контроля с учётом поиска/сортировки.
func (s *ControlTests) List(ctx context.Context, opts *ListOptions) ([]models.ControlTest, error) {
	var out []models.ControlTest
	if err := s.c.Get(ctx, "/control-tests/", &out, &client.Options{Query: opts.Query()}); err != nil {
		return nil, err
	}

	return out, nil
}

// Get возвращает один тест контроля.
func (s *ControlTests) Get(ctx context.Context, id int64) (*models.ControlTest, error) {
	var out models.ControlTest
	if err := s.c.Get(ctx, fmt.Sprintf("/control-tests/%d/", id), &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Create создаёт тест контроля.
func (s *ControlTests) Create(ctx context.Context, in models.ControlTestInput) (*models.ControlTest, error) {
	var out models.ControlTest
	if err := s.c.Post(ctx, "/control-tests/", in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Update частично обновляет тест контроля (PATCH-семантика).
func (s *ControlTests) Update(ctx context.Context, id int64, in models.ControlTestInput) (*models.ControlTest, error) {
	var out models.ControlTest
	if err := s.c.Patch(ctx, fmt.Sprintf("/control-tests/%d/", id), in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Delete удаляет тест контроля.
func (s *ControlTests) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/control-tests/%d/", id), nil)
}
