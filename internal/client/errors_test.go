package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAPIError_DetailField(t *testing.T) {
	t.Parallel()

	e := newAPIError(401, []byte(`{"detail":"Given token not valid for any token type"}`))
	require.Equal(t, 401, e.StatusCode)
	require.Equal(t, "Given token not valid for any token type", e.Message)
}

func TestNewAPIError_MessagePriority(t *testing.T) {
	t.Parallel()

	// detail важнее message, message важнее error.
	e := newAPIError(400, []byte(`{"detail":"d","message":"m","error":"e"}`))
	require.Equal(t, "d", e.Message)

	e = newAPIError(400, []byte(`{"message":"m","error":"e"}`))
	require.Equal(t, "m", e.Message)

	e = newAPIError(400, []byte(`{"error":"e"}`))
	require.Equal(t, "e", e.Message)
}

// Карта поле -> ошибки склеивается детерминированно,
// поля в лексикографическом порядке.
func TestNewAPIError_ValidationMap(t *testing.T) {
	t.Parallel()

	e := newAPIError(400, []byte(`{"name": ["too long"], "objective": ["required"]}`))
	require.Equal(t, 400, e.StatusCode)
	require.Equal(t, "name: too long; objective: required", e.Message)
}

func TestNewAPIError_ValidationMap_MultipleMessagesPerField(t *testing.T) {
	t.Parallel()

	e := newAPIError(400, []byte(`{"due_date": ["invalid format", "must be future"]}`))
	require.Equal(t, "due_date: invalid format, must be future", e.Message)
}

func TestNewAPIError_FallbackToStatusText(t *testing.T) {
	t.Parallel()

	e := newAPIError(500, nil)
	require.Equal(t, "Internal Server Error", e.Message)

	e = newAPIError(502, []byte("<html>bad gateway</html>"))
	require.Equal(t, "Bad Gateway", e.Message)

	// Неизвестный статус без тела — числовой fallback.
	e = newAPIError(599, nil)
	require.Equal(t, "HTTP 599", e.Message)
}

// Разобранное тело сохраняется как есть для вызывающего кода.
func TestNewAPIError_KeepsParsedBody(t *testing.T) {
	t.Parallel()

	e := newAPIError(400, []byte(`{"name": ["too long"]}`))
	body, ok := e.Body.(map[string]any)
	require.True(t, ok)
	require.Contains(t, body, "name")
}

func TestAPIError_ErrorString(t *testing.T) {
	t.Parallel()

	e := newAPIError(404, []byte(`{"detail":"not found"}`))
	require.Equal(t, "api error 404: not found", e.Error())
}
