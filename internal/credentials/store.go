// credentials — персистентное хранилище пары токенов.
//
// Контракт нарочно минимальный: ключ-значение без какой-либо логики.
// Недоступность хранилища при чтении трактуется как "нет сохранённых
// токенов", а не как фатальная ошибка — сессия просто стартует
// разлогиненной.
package credentials

import (
	"errors"

	"github.com/robertdoneill/vensa-go/internal/models"
)

// ErrUnavailable — хранилище недоступно для записи (нет прав,
// нет каталога и т.п.). Возвращается только из Save/Clear;
// Load при недоступности отдаёт пустую пару без ошибки.
var ErrUnavailable = errors.New("credential store unavailable")

// Store задаёт контракт хранения пары токенов между запусками.
type Store interface {
	// Save сохраняет пару целиком, перезаписывая предыдущую.
	Save(pair models.TokenPair) error
	// Load возвращает сохранённую пару; отсутствие данных — пустая
	// пара и nil-ошибка. Частично сохранённая пара возвращается как есть.
	Load() (models.TokenPair, error)
	// Clear удаляет сохранённые токены; идемпотентен.
	Clear() error
}
