// api — именованные модули доступа к ресурсам бэкенда Vensa.
// Каждый модуль — тонкая CRUD-обёртка над пайплайном client.Client;
// вся авторизация, refresh и нормализация ошибок происходят уровнем
// ниже и отсюда не видны.
package api

import (
	"net/url"
	"strconv"

	"github.com/robertdoneill/vensa-go/internal/client"
)

// API агрегирует все ресурсные модули над одним пайплайном.
type API struct {
	ControlTests *ControlTests
	Workpapers   *Workpapers
	Evidence     *Evidence
	Exceptions   *Exceptions
	Remediations *Remediations
	Users        *Users
}

// New создаёт ресурсные модули поверх готового клиента.
func New(c *client.Client) *API {
	return &API{
		ControlTests: &ControlTests{c: c},
		Workpapers:   &Workpapers{c: c},
		Evidence:     &Evidence{c: c},
		Exceptions:   &Exceptions{c: c},
		Remediations: &Remediations{c: c},
		Users:        &Users{c: c},
	}
}

// ListOptions — общие параметры списков (поиск/сортировка/страница).
type ListOptions struct {
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// Query собирает параметры в строку запроса; nil-опции — пустая.
func (o *ListOptions) Query() url.Values {
	if o == nil {
		return nil
	}

	q := url.Values{}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Ordering != "" {
		q.Set("ordering", o.Ordering)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(o.PageSize))
	}

	return q
}
