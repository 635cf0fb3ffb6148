package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrTimeout — запрос превысил настроенный дедлайн.
	// Обычный отказ вызова: специального ретрая нет.
	ErrTimeout = errors.New("request timed out")

	// ErrSessionExpired — refresh провалился, сессия разлогинена.
	// Получают все вызовы, ожидавшие общий refresh-цикл.
	ErrSessionExpired = errors.New("session expired")
)

// APIError — нормализованная ошибка бэкенда: числовой статус,
// человекочитаемое сообщение и разобранное тело как есть.
type APIError struct {
	StatusCode int
	Message    string
	Body       any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// newAPIError разбирает тело ответа и извлекает сообщение:
//  1. строковое поле detail / message / error;
//  2. карта поле -> список ошибок (валидация DRF), склеенная в
//     "field: msg1, msg2; field2: ...", поля в лексикографическом
//     порядке для детерминизма;
//  3. стандартный текст HTTP-статуса.
func newAPIError(status int, body []byte) *APIError {
	var parsed any
	if len(body) > 0 {
		_ = json.Unmarshal(body, &parsed)
	}

	msg := ""
	if obj, ok := parsed.(map[string]any); ok {
		msg = messageFromObject(obj)
	}

	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}

	return &APIError{
		StatusCode: status,
		Message:    msg,
		Body:       parsed,
	}
}

func messageFromObject(obj map[string]any) string {
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}

	return joinFieldErrors(obj)
}

// joinFieldErrors — карта поле -> ошибки в одну строку.
// Значения-списки склеиваются запятой, строки берутся как есть,
// прочие типы игнорируются.
func joinFieldErrors(obj map[string]any) string {
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		switch v := obj[field].(type) {
		case []any:
			msgs := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				parts = append(parts, field+": "+strings.Join(msgs, ", "))
			}
		case string:
			if v != "" {
				parts = append(parts, field+": "+v)
			}
		}
	}

	return strings.Join(parts, "; ")
}
