// Package models содержит доменные структуры бота: профиль пользователя,
// заказ, отклик и отметку о просмотре заказа в ленте.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// PortfolioNone — значение, которым пользователь сообщает, что портфолио нет.
const PortfolioNone = "-"

// PortfolioPlaceholder выводится в профиле вместо пустого портфолио.
const PortfolioPlaceholder = "—"

// Предельная длина ответов в символах. Короткие поля (имя, сфера, портфолио,
// название заказа) совпадают с VARCHAR(255). Длинные (о себе, описание заказа)
// выбраны так, чтобы профиль, отклик и карточка заказа целиком помещались
// в одно сообщение Telegram (4096 символов).
const (
	ShortTextMax = 255
	LongTextMax  = 2000
)

// User представляет зарегистрированного участника площадки.
type User struct {
	ID        int64     // Идентификатор пользователя в Telegram
	Username  string    // Никнейм в Telegram (может быть пустым)
	FullName  string    // Имя, указанное при регистрации
	Bio       string    // Рассказ о себе
	Sphere    string    // Сфера деятельности
	Portfolio *string   // Ссылка на портфолио, nil — портфолио нет
	Role      Role      // Роль на площадке
	IsActive  bool      // Виден ли профиль в поиске
	CreatedAt time.Time // Дата регистрации
}

// PortfolioOrPlaceholder возвращает ссылку на портфолио или прочерк для вывода.
func (u *User) PortfolioOrPlaceholder() string {
	if u.Portfolio == nil || *u.Portfolio == "" {
		return PortfolioPlaceholder
	}
	return *u.Portfolio
}

// ParsePortfolio переводит ввод пользователя в значение для хранения:
// прочерк означает отсутствие портфолио.
func ParsePortfolio(input string) *string {
	if input == PortfolioNone {
		return nil
	}
	return &input
}

// ProfileField — поле профиля, доступное для редактирования.
type ProfileField string

// Поля профиля, которые можно изменить через меню редактирования.
const (
	FieldName      ProfileField = "name"
	FieldSphere    ProfileField = "sphere"
	FieldBio       ProfileField = "bio"
	FieldPortfolio ProfileField = "portfolio"
	FieldRole      ProfileField = "role"
)

// ParseProfileField проверяет, что поле известно.
func ParseProfileField(s string) (ProfileField, bool) {
	switch f := ProfileField(s); f {
	case FieldName, FieldSphere, FieldBio, FieldPortfolio, FieldRole:
		return f, true
	}
	return "", false
}

// Column возвращает имя колонки таблицы users для поля.
func (f ProfileField) Column() string {
	switch f {
	case FieldName:
		return "full_name"
	case FieldSphere:
		return "sphere"
	case FieldBio:
		return "bio"
	case FieldPortfolio:
		return "portfolio"
	case FieldRole:
		return "role"
	}
	return ""
}
