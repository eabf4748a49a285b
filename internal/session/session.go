// Package session хранит состояние диалога пользователя с ботом:
// текущий шаг и данные, собранные на предыдущих шагах.
package session

import "context"

// State — шаг диалога.
type State string

// Шаги диалогов. Пустое состояние означает, что диалога нет.
const (
	StateNone State = ""

	StateRegFullName  State = "registration.full_name"
	StateRegSphere    State = "registration.sphere"
	StateRegBio       State = "registration.bio"
	StateRegPortfolio State = "registration.portfolio"
	StateRegRole      State = "registration.role"
	StateRegConfirm   State = "registration.confirm"

	StateOrderTitle       State = "order.title"
	StateOrderDescription State = "order.description"
	StateOrderPhoto       State = "order.photo"

	StateProfileNewValue State = "profile.new_value"

	StateSearch State = "search"
)

// IsRegistration сообщает, относится ли шаг к регистрации.
func (s State) IsRegistration() bool {
	switch s {
	case StateRegFullName, StateRegSphere, StateRegBio, StateRegPortfolio, StateRegRole, StateRegConfirm:
		return true
	}
	return false
}

// Session — состояние диалога одного пользователя.
type Session struct {
	UserID int64             `json:"user_id"`
	State  State             `json:"state"`
	Data   map[string]string `json:"data,omitempty"`
}

// New возвращает пустую сессию пользователя.
func New(userID int64) *Session {
	return &Session{UserID: userID, Data: map[string]string{}}
}

// Set записывает значение шага.
func (s *Session) Set(key, value string) {
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	s.Data[key] = value
}

// Get возвращает сохранённое значение.
func (s *Session) Get(key string) string {
	return s.Data[key]
}

// Store хранит не более одной сессии на пользователя.
type Store interface {
	// Get возвращает сессию; если её нет — пустую сессию без ошибки.
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context, userID int64) error
}
