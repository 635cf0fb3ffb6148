// models описывает REST-формы бэкенда Vensa (snake_case JSON),
// которыми обмениваются клиентский пайплайн и сервисы ресурсов.
package models

// TokenPair — пара токенов, выдаваемая бэкендом при аутентификации.
//
// Описание:
//   - Access — короткоживущий токен, подставляется как Bearer в каждый
//     авторизованный запрос;
//   - Refresh — долгоживущий секрет, предъявляется только для выпуска
//     нового access-токена.
//
// Оба токена непрозрачны для клиента: их структура и сроки действия
// не разбираются, истечение обнаруживается реактивно (401 или verify).
type TokenPair struct {
	// Access — bearer-токен для авторизации запросов.
	Access string `json:"access"`
	// Refresh — секрет для обновления access-токена.
	Refresh string `json:"refresh"`
}

// HasAccess сообщает, содержит ли пара access-токен.
func (p TokenPair) HasAccess() bool { return p.Access != "" }

// HasRefresh сообщает, содержит ли пара refresh-токен.
func (p TokenPair) HasRefresh() bool { return p.Refresh != "" }

// LoginRequest — тело POST /token/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest — тело POST /token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse — ответ POST /token/refresh/: бэкенд выпускает
// только новый access-токен, refresh остаётся прежним.
type RefreshResponse struct {
	Access string `json:"access"`
}

// VerifyRequest — тело POST /token/verify/; тело ответа игнорируется,
// важен только статус (2xx — токен валиден).
type VerifyRequest struct {
	Token string `json:"token"`
}
