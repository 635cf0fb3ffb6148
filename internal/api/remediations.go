package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/robertdoneill/vensa-go/internal/client"
	"github.com/robertdoneill/vensa-go/internal/models"
)

// Remediations — операции над планами устранения.
type Remediations struct {
	c *client.Client
}

// List возвращает планы; exceptionID > 0 фильтрует по исключению.
func (s *Remediations) List(ctx context.Context, exceptionID int64, opts *ListOptions) ([]models.Remediation, error) {
	q := opts.Query()
	if exceptionID > 0 {
		if q == nil {
			q = map[string][]string{}
		}
		q.Set("exception", strconv.FormatInt(exceptionID, 10))
	}

	var out []models.Remediation
	if err := s.c.Get(ctx, "/remediations/", &out, &client.Options{Query: q}); err != nil {
		return nil, err
	}

	return out, nil
}

// Get возвращает один план.
func (s *Remediations) Get(ctx context.Context, id int64) (*models.Remediation, error) {
	var out models.Remediation
	if err := s.c.Get(ctx, fmt.Sprintf("/remediations/%d/", id), &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Create создаёт план устранения.
func (s *Remediations) Create(ctx context.Context, in models.RemediationInput) (*models.Remediation, error) {
	var out models.Remediation
	if err := s.c.Post(ctx, "/remediations/", in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Update частично обновляет план.
func (s *Remediations) Update(ctx context.Context, id int64, in models.RemediationInput) (*models.Remediation, error) {
	var out models.Remediation
	if err := s.c.Patch(ctx, fmt.Sprintf("/remediations/%d/", id), in, &out, nil); err != nil {
		return nil, err
	}

	return &out, nil
}

// Delete удаляет план.
func (s *Remediations) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, fmt.Sprintf("/remediations/%d/", id), nil)
}
