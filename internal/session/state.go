package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/robertdoneill/vensa-go/internal/models"
)

// ProfileService — загрузка профиля текущего пользователя.
// Реализуется api.Users; интерфейс здесь, чтобы не тянуть пакет api
// в session (приём интерфейсов, возврат структур).
type ProfileService interface {
	Me(ctx context.Context) (*models.UserProfile, error)
}

// Snapshot — срез состояния сессии для потребителей (CLI/UI-слой).
type Snapshot struct {
	AccessToken     string
	User            *models.UserProfile
	IsAuthenticated bool
	// IsLoading истинно только во время одноразовой стартовой
	// проверки (Bootstrap).
	IsLoading bool
}

// State — реактивная обёртка над Manager: зеркалит его состояние,
// держит профиль пользователя и рассылает снапшоты подписчикам
// при каждом изменении.
type State struct {
	mgr      *Manager
	profiles ProfileService

	mu      sync.Mutex
	user    *models.UserProfile
	loading bool
	subs    map[int]chan Snapshot
	nextSub int

	bootstrapOnce sync.Once
	bootstrapErr  error
}

// NewState создаёт адаптер состояния поверх Manager.
func NewState(mgr *Manager, profiles ProfileService) *State {
	return &State{
		mgr:      mgr,
		profiles: profiles,
		subs:     make(map[int]chan Snapshot),
	}
}

// Snapshot возвращает текущий срез состояния.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Subscribe возвращает канал снапшотов и функцию отписки.
// Канал буферизован на одно значение; при отставании подписчика
// устаревший снапшот вытесняется свежим.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Bootstrap выполняет стартовую последовательность ровно один раз
// на процесс: по сохранённому access-токену — Verify; валиден —
// загрузка профиля; невалиден — попытка Refresh и загрузка профиля
// с новым токеном; провал refresh оставляет сессию разлогиненной
// (Manager уже вычистил токены). Пока Bootstrap не завершился,
// IsLoading == true — любые другие запросы стоит сериализовать
// после него.
func (s *State) Bootstrap(ctx context.Context) error {
	s.bootstrapOnce.Do(func() {
		s.bootstrapErr = s.bootstrap(ctx)
	})

	return s.bootstrapErr
}

func (s *State) bootstrap(ctx context.Context) error {
	const op = "session.state.Bootstrap"

	s.setLoading(true)
	defer s.setLoading(false)

	if !s.mgr.IsAuthenticated() {
		return nil
	}

	if !s.mgr.Verify(ctx, "") {
		if _, err := s.mgr.Refresh(ctx); err != nil {
			// Сессия уже разлогинена; старт без пользователя.
			return nil
		}
	}

	user, err := s.profiles.Me(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.setUser(user)

	return nil
}

// Login делегирует Manager.Login и до возврата загружает профиль.
func (s *State) Login(ctx context.Context, username, password string) error {
	const op = "session.state.Login"

	if _, err := s.mgr.Login(ctx, username, password); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.profiles.Me(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.setUser(user)

	return nil
}

// Logout делегирует Manager.Logout и обнуляет профиль.
func (s *State) Logout(ctx context.Context) {
	s.mgr.Logout(ctx)
	s.setUser(nil)
}

// RefreshToken — явное обновление access-токена (поверхность для
// потребителей; внутри — тот же единственный refresh-обмен).
func (s *State) RefreshToken(ctx context.Context) (string, error) {
	return s.mgr.Refresh(ctx)
}

func (s *State) setUser(user *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	s.notifyLocked()
}

func (s *State) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = v
	s.notifyLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		AccessToken:     s.mgr.AccessToken(),
		User:            s.user,
		IsAuthenticated: s.mgr.IsAuthenticated(),
		IsLoading:       s.loading,
	}
}

// notifyLocked рассылает свежий снапшот; отстающий подписчик теряет
// промежуточное значение, но всегда видит последнее.
func (s *State) notifyLocked() {
	snap := s.snapshotLocked()

	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
