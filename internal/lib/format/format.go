// Package format собирает HTML‑тексты профилей и заказов, которые
// бот отправляет в личные сообщения и в общую группу.
package format

import (
	"fmt"
	"html"
	"unicode/utf8"

	"github.com/magabrotheeeer/connect-bot/internal/models"
)

const previewLen = 100

// Profile форматирует профиль пользователя.
func Profile(u *models.User) string {
	return fmt.Sprintf(
		"<b>👤 Имя:</b> %s\n"+
			"<b>🛠️ Сфера:</b> %s\n"+
			"<b>📝 О себе:</b> %s\n"+
			"<b>🔗 Портфолио:</b> %s\n"+
			"<b>🎯 Роль:</b> %s\n"+
			"<b>✈️ TG:</b> %s",
		Escape(u.FullName),
		Escape(u.Sphere),
		Escape(u.Bio),
		Escape(u.PortfolioOrPlaceholder()),
		u.Role.Title(),
		Handle(u.Username),
	)
}

// OwnProfile — профиль с блоком видимости, который пользователь видит у себя.
func OwnProfile(u *models.User) string {
	visibility := "ВЫКЛ ❌ (скрыт)"
	if u.IsActive {
		visibility = "ВКЛ ✅ (виден в поиске)"
	}
	return fmt.Sprintf("<b>Ваш профиль:</b>\n\n%s\n\n<b>Статус видимости:</b> %s", Profile(u), visibility)
}

// NewMember — анкета для публикации в группе.
func NewMember(u *models.User) string {
	return "👋 Встречайте нового участника!\n\n" + Profile(u)
}

// FeedCard — карточка заказа в ленте исполнителя.
func FeedCard(o *models.FeedOrder) string {
	return fmt.Sprintf(
		"<b>Заказ: %s</b>\n\n<b>Описание:</b>\n%s\n\n<b>Заказчик:</b> %s (%s)",
		Escape(o.Title), Escape(o.Description), Escape(o.EmployerName), Handle(o.EmployerUsername),
	)
}

// Announcement — пост о новом заказе для ветки заказов.
func Announcement(o *models.Order, employer *models.User) string {
	return fmt.Sprintf(
		"<b>🔥 Новый заказ: %s</b>\n\n"+
			"<b>📝 Описание:</b>\n%s\n\n"+
			"<b>Заказчик:</b> %s (%s)\n\n"+
			"<i>Откликнуться на заказ можно через бота в разделе 'Найти работу'.</i>",
		Escape(o.Title), Escape(o.Description), Escape(employer.FullName), Handle(employer.Username),
	)
}

// OwnOrder — строка списка «Мои заказы».
func OwnOrder(o *models.Order) string {
	status := "🟢 (Открыт)"
	if o.IsClosed() {
		status = "🔒 (Закрыт)"
	}
	return fmt.Sprintf(
		"<b>Заказ #%d: %s</b>\nСтатус: %s\n<i>Описание:</i> %s...",
		o.ID, Escape(o.Title), status, Escape(truncate(o.Description, previewLen)),
	)
}

// Application — сообщение заказчику об отклике исполнителя.
func Application(o *models.Order, worker *models.User) string {
	return fmt.Sprintf(
		"✉️ <b>Новый отклик на ваш заказ «%s»!</b>\n\nПрофиль исполнителя:\n%s",
		Escape(o.Title), Profile(worker),
	)
}

// Handle возвращает @username или прочерк, если ника нет.
func Handle(username string) string {
	if username == "" {
		return models.PortfolioPlaceholder
	}
	return "@" + Escape(username)
}

// Escape экранирует пользовательский текст для HTML‑разметки.
func Escape(s string) string {
	return html.EscapeString(s)
}

// truncate обрезает строку по рунам, чтобы не порвать кириллицу.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
