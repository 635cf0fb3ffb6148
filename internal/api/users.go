package api

import (
	"context"
	"fmt"

	"github.com/robertdoneill/vensa-go/internal/client"
	"github.com/robertdoneill/vensa-go/internal/models"
)

// Users — операции над пользователями.
type Users struct {
	c *client.Client
}

// Me возвращает профиль текущего пользователя.
// Реализует session.ProfileService.
func (s *Users) Me(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := s.c.Get(ctx, "/users/me/", &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// List возвращает пользователей (назначение работ, ревью).
func (s *Users) List(ctx context.Context, opts *ListOptions) ([]models.User, error) {
	var out []models.User
	if err := s.c.Get(ctx, "/users/", &out, &client.Options{Query: opts.Query()}); err != nil {
		return nil, err
	}

	return out, nil
}

// Get возвращает одного пользователя.
func (s *Users) Get(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	if err := s.c.Get(ctx, fmt.Sprintf("/users/%d/", id), &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}
