package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// fakeAuth — управляемый Authorizer для тестов пайплайна.
// Refresh здесь намеренно без singleflight: его даёт session.Manager,
// а пайплайн тестируется на контракте "один Refresh на один 401".
type fakeAuth struct {
	mu           sync.Mutex
	access       string
	newToken     string
	refreshable  bool
	refreshErr   error
	refreshCalls int
}

func (f *fakeAuth) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeAuth) CanRefresh() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshable
}

func (f *fakeAuth) Refresh(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshCalls++
	if f.refreshErr != nil {
		return "", f.refreshErr
	}

	f.access = f.newToken
	return f.newToken, nil
}

func (f *fakeAuth) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(srv.URL, opts...)
}

func TestClient_AttachesBearerFromAuthorizer(t *testing.T) {
	t.Parallel()

	var gotAuth string
	r := chi.NewRouter()
	r.Get("/ping/", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	auth := &fakeAuth{access: "tok-1"}
	c := newTestClient(t, r, WithAuthorizer(auth))

	require.NoError(t, c.Get(context.Background(), "/ping/", nil, nil))
	require.Equal(t, "Bearer tok-1", gotAuth)
}

// Явный токен вызова приоритетнее токена сессии.
func TestClient_ExplicitTokenWins(t *testing.T) {
	t.Parallel()

	var gotAuth string
	r := chi.NewRouter()
	r.Get("/ping/", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	auth := &fakeAuth{access: "session-token"}
	c := newTestClient(t, r, WithAuthorizer(auth))

	err := c.Get(context.Background(), "/ping/", nil, &Options{Token: "explicit-token"})
	require.NoError(t, err)
	require.Equal(t, "Bearer explicit-token", gotAuth)
}

// SkipAuth подавляет и заголовок, и цикл refresh.
func TestClient_SkipAuth_NoHeaderNoRefresh(t *testing.T) {
	t.Parallel()

	var gotAuth string
	r := chi.NewRouter()
	r.Post("/token/", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	})

	auth := &fakeAuth{access: "tok", refreshable: true}
	c := newTestClient(t, r, WithAuthorizer(auth))

	err := c.Post(context.Background(), "/token/", map[string]string{"username": "u"}, nil,
		&Options{SkipAuth: true})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Empty(t, gotAuth)
	require.Zero(t, auth.calls())
}

func TestClient_RequestHeaders(t *testing.T) {
	t.Parallel()

	var gotContentType, gotRequestID, gotUA string
	r := chi.NewRouter()
	r.Post("/items/", func(w http.ResponseWriter, req *http.Request) {
		gotContentType = req.Header.Get("Content-Type")
		gotRequestID = req.Header.Get("X-Request-Id")
		gotUA = req.Header.Get("User-Agent")
		w.WriteHeader(http.StatusCreated)
	})

	c := newTestClient(t, r, WithUserAgent("Vensa"))

	require.NoError(t, c.Post(context.Background(), "/items/", map[string]string{"a": "b"}, nil, nil))
	require.Equal(t, "application/json", gotContentType)
	require.NotEmpty(t, gotRequestID)
	require.Equal(t, "Vensa", gotUA)
}

// RawBody уходит как есть; пустой ContentType оставляет заголовок пустым.
func TestClient_RawBody_ContentTypePassthrough(t *testing.T) {
	t.Parallel()

	var gotContentType string
	var gotBody []byte
	r := chi.NewRouter()
	r.Post("/upload/", func(w http.ResponseWriter, req *http.Request) {
		gotContentType = req.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(req.Body)
		w.WriteHeader(http.StatusCreated)
	})

	c := newTestClient(t, r)

	err := c.Post(context.Background(), "/upload/", nil, nil, &Options{
		RawBody:     []byte("binary-payload"),
		ContentType: "multipart/form-data; boundary=xyz",
	})
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data; boundary=xyz", gotContentType)
	require.Equal(t, "binary-payload", string(gotBody))
}

// 401 -> refresh -> успешный повтор с новым токеном.
func TestClient_Retry401_WithRefreshedToken(t *testing.T) {
	t.Parallel()

	var attempts []string
	var mu sync.Mutex

	r := chi.NewRouter()
	r.Get("/control-tests/", func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		attempts = append(attempts, req.Header.Get("Authorization"))
		mu.Unlock()

		if req.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"token expired"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"AC-01"}]`))
	})

	auth := &fakeAuth{access: "stale", newToken: "fresh", refreshable: true}
	c := newTestClient(t, r, WithAuthorizer(auth))

	var out []map[string]any
	require.NoError(t, c.Get(context.Background(), "/control-tests/", &out, nil))

	require.Len(t, out, 1)
	require.Equal(t, 1, auth.calls())
	require.Equal(t, []string{"Bearer stale", "Bearer fresh"}, attempts)
}

// Повторный 401 после успешного refresh — жёсткий отказ без второго refresh.
func TestClient_SecondUnauthorized_HardFailure(t *testing.T) {
	t.Parallel()

	var hits int
	var mu sync.Mutex
	r := chi.NewRouter()
	r.Get("/items/", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"still unauthorized"}`))
	})

	auth := &fakeAuth{access: "stale", newToken: "fresh", refreshable: true}
	c := newTestClient(t, r, WithAuthorizer(auth))

	err := c.Get(context.Background(), "/items/", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, 1, auth.calls())
	require.Equal(t, 2, hits)
}

// Провал refresh — ErrSessionExpired вызывающему.
func TestClient_RefreshFailure_SessionExpired(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/items/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	auth := &fakeAuth{access: "stale", refreshable: true, refreshErr: errors.New("refresh token rejected")}
	c := newTestClient(t, r, WithAuthorizer(auth))

	err := c.Get(context.Background(), "/items/", nil, nil)
	require.ErrorIs(t, err, ErrSessionExpired)
}

// Без refresh-токена цикл refresh не запускается вовсе.
func TestClient_Unauthorized_NoRefreshToken_NoCycle(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/items/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	auth := &fakeAuth{access: "stale", refreshable: false}
	c := newTestClient(t, r, WithAuthorizer(auth))

	err := c.Get(context.Background(), "/items/", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Zero(t, auth.calls())
}

// Тело запроса воспроизводится на повторе после refresh.
func TestClient_RetryReplaysBody(t *testing.T) {
	t.Parallel()

	var bodies []string
	var mu sync.Mutex
	r := chi.NewRouter()
	r.Post("/items/", func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()

		if req.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	auth := &fakeAuth{access: "stale", newToken: "fresh", refreshable: true}
	c := newTestClient(t, r, WithAuthorizer(auth))

	require.NoError(t, c.Post(context.Background(), "/items/", map[string]string{"name": "x"}, nil, nil))

	require.Len(t, bodies, 2)
	require.JSONEq(t, `{"name":"x"}`, bodies[0])
	require.Equal(t, bodies[0], bodies[1])
}

// Пустое тело успешного ответа — пустой объект, а не ошибка.
func TestClient_EmptyBody_OK(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Delete("/items/{id}/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, r)
	require.NoError(t, c.Delete(context.Background(), "/items/7/", nil))
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/slow/", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, r, WithTimeout(30*time.Millisecond))

	err := c.Get(context.Background(), "/slow/", nil, nil)
	require.ErrorIs(t, err, ErrTimeout)
}

// Существующий дедлайн контекста уважается.
func TestClient_RespectsContextDeadline(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/slow/", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, r, WithTimeout(10*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "/slow/", nil, nil)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestClient_QueryParams(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	r := chi.NewRouter()
	r.Get("/items/", func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	c := newTestClient(t, r)

	q := url.Values{}
	q.Set("search", "access review")
	q.Set("page", "2")

	var out []json.RawMessage
	require.NoError(t, c.Get(context.Background(), "/items/", &out, &Options{Query: q}))
	require.Equal(t, "access review", gotQuery.Get("search"))
	require.Equal(t, "2", gotQuery.Get("page"))
}

// Нормализация ошибок сквозным путём: валидационная карта DRF.
func TestClient_ErrorNormalization_EndToEnd(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Post("/control-tests/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"name": ["too long"], "objective": ["required"]}`))
	})

	c := newTestClient(t, r)

	err := c.Post(context.Background(), "/control-tests/", map[string]string{}, nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "name: too long; objective: required", apiErr.Message)
}
