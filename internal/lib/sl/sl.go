// Package sl содержит вспомогательные атрибуты для логгера slog.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки. Для nil пишет пустую строку.
//
//	log.Error("failed to save order", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// UserID возвращает атрибут с идентификатором пользователя Telegram.
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

// OrderID возвращает атрибут с идентификатором заказа.
func OrderID(id int64) slog.Attr {
	return slog.Int64("order_id", id)
}
