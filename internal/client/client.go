// client — HTTP-пайплайн к REST-бэкенду Vensa: один исходящий запрос
// на вызов, подстановка bearer-токена, прозрачный цикл
// 401 -> refresh -> повтор (ровно один раз) и нормализация ошибок
// бэкенда в единый вид (*APIError).
//
// Координация refresh живёт в session.Manager (Authorizer): пайплайн
// только читает токены и дергает Refresh, никогда их не мутирует.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	logctx "github.com/robertdoneill/vensa-go/internal/pkg/log"
)

// Authorizer — источник токенов для пайплайна. Реализуется
// session.Manager; пайплайн знает только этот контракт.
type Authorizer interface {
	// AccessToken возвращает текущий access-токен ("" — нет).
	AccessToken() string
	// CanRefresh сообщает, есть ли сохранённый refresh-токен.
	CanRefresh() bool
	// Refresh выпускает новый access-токен. Одновременные вызовы
	// схлопываются в один обмен; все ожидающие получают общий
	// результат. Терминальная ошибка означает, что сессия уже
	// разлогинена.
	Refresh(ctx context.Context) (string, error)
}

// Client — клиент REST-бэкенда.
type Client struct {
	baseURL   string
	httpc     *http.Client
	auth      Authorizer
	timeout   time.Duration
	userAgent string
}

// Option настраивает Client при создании.
type Option func(*Client)

// WithAuthorizer привязывает источник токенов.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Client) { c.auth = a }
}

// WithHTTPClient подменяет транспорт (тесты, прокси).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithTimeout задаёт дедлайн запроса, если в контексте его нет.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent задаёт User-Agent исходящих запросов.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New создаёт клиент для заданного корня API.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpc:     &http.Client{},
		userAgent: "vensa-go",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Options — параметры одного вызова.
type Options struct {
	// Token — явный bearer-токен; приоритетнее токена сессии.
	Token string
	// SkipAuth подавляет подстановку токена и цикл refresh.
	// Используется эндпойнтами /token/*, чтобы не зациклиться.
	SkipAuth bool
	// Query — параметры строки запроса.
	Query url.Values
	// Body — JSON-тело (маршалится пайплайном).
	Body any
	// RawBody — готовое тело как есть (multipart и прочие бинарные
	// полезные нагрузки); Content-Type берётся из ContentType.
	RawBody []byte
	// ContentType — тип RawBody; пустой оставляет заголовок
	// незаданным (multipart-границы уже вшиты в ContentType).
	ContentType string
}

// Get выполняет GET и декодирует ответ в out (nil — ответ не нужен).
func (c *Client) Get(ctx context.Context, endpoint string, out any, opts *Options) error {
	return c.call(ctx, http.MethodGet, endpoint, out, opts)
}

// Post выполняет POST с JSON-телом body.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts *Options) error {
	return c.callWithBody(ctx, http.MethodPost, endpoint, body, out, opts)
}

// Put выполняет PUT с JSON-телом body.
func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts *Options) error {
	return c.callWithBody(ctx, http.MethodPut, endpoint, body, out, opts)
}

// Patch выполняет PATCH с JSON-телом body.
func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts *Options) error {
	return c.callWithBody(ctx, http.MethodPatch, endpoint, body, out, opts)
}

// Delete выполняет DELETE; тело ответа игнорируется.
func (c *Client) Delete(ctx context.Context, endpoint string, opts *Options) error {
	return c.call(ctx, http.MethodDelete, endpoint, nil, opts)
}

func (c *Client) callWithBody(ctx context.Context, method, endpoint string, body, out any, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	if body != nil {
		opts.Body = body
	}

	return c.call(ctx, method, endpoint, out, opts)
}

func (c *Client) call(ctx context.Context, method, endpoint string, out any, opts *Options) error {
	data, err := c.Do(ctx, method, endpoint, opts)
	if err != nil {
		return err
	}

	// Пустое тело — пустой объект, а не ошибка.
	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client.Do: decode response: %w", err)
	}

	return nil
}

// Do выполняет один вызов целиком: сборка запроса, bearer,
// 401->refresh->повтор, нормализация ошибок. Возвращает сырые байты
// успешного ответа.
func (c *Client) Do(ctx context.Context, method, endpoint string, opts *Options) ([]byte, error) {
	const op = "client.Do"

	if opts == nil {
		opts = &Options{}
	}

	u, err := c.buildURL(endpoint, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payload, contentType, err := preparePayload(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Дедлайн: существующий в контексте уважаем, иначе — свой.
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqID := uuid.NewString()
	log := logctx.From(ctx).With(
		slog.String("request_id", reqID),
		slog.String("method", method),
		slog.String("endpoint", endpoint),
	)
	ctx = logctx.Into(ctx, log)

	token := c.resolveToken(opts)

	start := time.Now()
	status, data, err := c.send(ctx, method, u, payload, contentType, token, reqID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Цикл 401 -> refresh -> повтор. Ровно один повтор на исходный
	// запрос; второй 401 — жёсткий отказ без нового refresh.
	if status == http.StatusUnauthorized && !opts.SkipAuth && c.auth != nil && c.auth.CanRefresh() {
		log.Info("access_token_rejected_refreshing")

		newToken, rerr := c.auth.Refresh(ctx)
		if rerr != nil {
			// Сессия уже разлогинена менеджером; все ожидающие
			// получают одну и ту же терминальную ошибку.
			log.Warn("refresh_failed_session_expired", slog.String("err", rerr.Error()))
			return nil, fmt.Errorf("%s: %w: %w", op, ErrSessionExpired, rerr)
		}

		status, data, err = c.send(ctx, method, u, payload, contentType, newToken, reqID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Debug("api_request",
		slog.Int("status", status),
		slog.Duration("dur", time.Since(start)),
	)

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s: %w", op, newAPIError(status, data))
	}

	return data, nil
}

// send строит и отправляет один HTTP-запрос; тело каждый раз берётся
// из буфера payload, поэтому повтор после refresh безопасен.
func (c *Client) send(ctx context.Context, method, u string, payload []byte, contentType, token, reqID string) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", reqID)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}

		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}

		return 0, nil, err
	}

	return resp.StatusCode, data, nil
}

// resolveToken — приоритет: явный токен вызова > токен сессии > нет.
func (c *Client) resolveToken(opts *Options) string {
	if opts.SkipAuth {
		return ""
	}
	if opts.Token != "" {
		return opts.Token
	}
	if c.auth != nil {
		return c.auth.AccessToken()
	}

	return ""
}

func (c *Client) buildURL(endpoint string, query url.Values) (string, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return "", fmt.Errorf("bad endpoint %q: %w", endpoint, err)
	}

	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}

// preparePayload буферизует тело запроса: JSON из Body либо RawBody
// как есть. Буфер позволяет повторить запрос после refresh.
func preparePayload(opts *Options) ([]byte, string, error) {
	if opts.RawBody != nil {
		return opts.RawBody, opts.ContentType, nil
	}

	if opts.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(opts.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}

	return data, "application/json", nil
}
