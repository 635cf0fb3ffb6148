// session — владелец состояния аутентификации: пары токенов в памяти,
// их зеркала в credentials.Store и координации единственного
// refresh-обмена на процесс.
//
// Основные аспекты:
//   - Manager — единственный источник истины про текущий access-токен;
//     пайплайн и адаптер состояния токены только читают.
//   - Все мутации токенов происходят внутри Login/Refresh/Logout и
//     атомарно зеркалируются в Store.
//   - Refresh схлопывает конкурентные вызовы в один сетевой обмен
//     (singleflight): под N одновременных 401 бэкенд видит ровно один
//     POST /token/refresh/, и все ожидающие получают общий исход.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/robertdoneill/vensa-go/internal/client"
	"github.com/robertdoneill/vensa-go/internal/credentials"
	"github.com/robertdoneill/vensa-go/internal/models"
	logctx "github.com/robertdoneill/vensa-go/internal/pkg/log"
)

var (
	// ErrInvalidCredentials — логин/пароль отклонены бэкендом.
	// Отдаётся вызывающему без ретраев и без мутации токенов.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoRefreshToken — refresh невозможен: токен не сохранён.
	// Всегда завершается полным разлогином.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshRejected — бэкенд отклонил refresh-токен.
	// Всегда завершается полным разлогином.
	ErrRefreshRejected = errors.New("refresh token rejected")
)

// Пути аутентификационных эндпойнтов; вызываются со SkipAuth,
// чтобы 401 от них не запускал рекурсивный refresh.
const (
	loginEndpoint   = "/token/"
	refreshEndpoint = "/token/refresh/"
	verifyEndpoint  = "/token/verify/"
)

// Manager реализует client.Authorizer.
type Manager struct {
	store credentials.Store
	api   *client.Client

	mu   sync.Mutex
	pair models.TokenPair

	// refresh схлопывается по одному ключу: больше одного обмена
	// в полёте не бывает, следующий 401 после завершения цикла
	// начинает новый.
	sf singleflight.Group

	// onLogout — go-аналог жёсткой навигации на страницу логина.
	onLogout func()
}

// Option настраивает Manager при создании.
type Option func(*Manager)

// WithLogoutHook задаёт обработчик, вызываемый после очистки токенов
// в Logout (и при принудительном разлогине из-за провального refresh).
func WithLogoutHook(fn func()) Option {
	return func(m *Manager) { m.onLogout = fn }
}

// New создаёт Manager, засеивая пару токенов только из Store.
// api — пайплайн без Authorizer: менеджер ходит в /token/* сам
// и всегда со SkipAuth.
func New(store credentials.Store, api *client.Client, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		api:   api,
	}

	for _, opt := range opts {
		opt(m)
	}

	// Недоступность хранилища — просто пустая сессия.
	m.pair, _ = store.Load()

	return m
}

// Login обменивает логин/пароль на пару токенов.
// Непринятые учётные данные — ErrInvalidCredentials, токены не трогаем.
func (m *Manager) Login(ctx context.Context, username, password string) (models.TokenPair, error) {
	const op = "session.Login"

	var pair models.TokenPair
	err := m.api.Post(ctx, loginEndpoint, models.LoginRequest{
		Username: username,
		Password: password,
	}, &pair, &client.Options{SkipAuth: true})

	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return models.TokenPair{}, fmt.Errorf("%s: %w: %s", op, ErrInvalidCredentials, apiErr.Message)
		}

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	m.setPair(pair)

	return pair, nil
}

// Verify спрашивает бэкенд, валиден ли токен (token == "" — текущий
// access). Никогда не возвращает ошибку: любой сбой — false.
func (m *Manager) Verify(ctx context.Context, token string) bool {
	if token == "" {
		token = m.AccessToken()
	}
	if token == "" {
		return false
	}

	err := m.api.Post(ctx, verifyEndpoint, models.VerifyRequest{Token: token}, nil,
		&client.Options{SkipAuth: true})

	return err == nil
}

// Refresh обменивает сохранённый refresh-токен на новый access-токен.
//
// Конкурентные вызовы разделяют один сетевой обмен и один исход.
// Любая терминальная ошибка (нет токена, отказ бэкенда, сетевой сбой
// обмена) сначала полностью разлогинивает сессию — ни один ожидающий
// не выйдет отсюда, пока мёртвые токены не вычищены из памяти и Store.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	const op = "session.Refresh"

	v, err, _ := m.sf.Do("refresh", func() (any, error) {
		refresh := m.RefreshToken()
		if refresh == "" {
			m.Logout(ctx)
			return "", ErrNoRefreshToken
		}

		var resp models.RefreshResponse
		err := m.api.Post(ctx, refreshEndpoint, models.RefreshRequest{Refresh: refresh}, &resp,
			&client.Options{SkipAuth: true})

		if err != nil {
			m.Logout(ctx)

			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				return "", fmt.Errorf("%w: %s", ErrRefreshRejected, apiErr.Message)
			}

			return "", err
		}

		m.setAccess(resp.Access)
		logctx.From(ctx).Info("access_token_refreshed")

		return resp.Access, nil
	})

	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return v.(string), nil
}

// Logout очищает токены в памяти и Store и зовёт logout-хук.
// Идемпотентен: без токенов остаётся только "навигация" (хук).
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.pair = models.TokenPair{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		logctx.From(ctx).Warn("credential_store_clear_failed", slog.String("err", err.Error()))
	}

	if m.onLogout != nil {
		m.onLogout()
	}
}

// AccessToken возвращает текущий access-токен ("" — нет).
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pair.Access
}

// RefreshToken возвращает текущий refresh-токен ("" — нет).
func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pair.Refresh
}

// IsAuthenticated — наличие access-токена, а не его валидность:
// валидность проверяется лениво (401 или Verify).
func (m *Manager) IsAuthenticated() bool {
	return m.AccessToken() != ""
}

// CanRefresh сообщает, есть ли сохранённый refresh-токен.
func (m *Manager) CanRefresh() bool {
	return m.RefreshToken() != ""
}

// setPair записывает пару целиком: память и Store в одной операции.
func (m *Manager) setPair(pair models.TokenPair) {
	m.mu.Lock()
	m.pair = pair
	m.mu.Unlock()

	_ = m.store.Save(pair)
}

// setAccess заменяет только access-токен; refresh остаётся прежним.
func (m *Manager) setAccess(access string) {
	m.mu.Lock()
	m.pair.Access = access
	pair := m.pair
	m.mu.Unlock()

	_ = m.store.Save(pair)
}

var _ client.Authorizer = (*Manager)(nil)
