package models

// UserProfile — профиль текущего пользователя.
// Загружается один раз после подтверждения валидности токена;
// сам по себе не является security-чувствительным.
type UserProfile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// User — пользователь в списках ресурсов (назначение работ, ревью).
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
}
