package bot

import (
	"github.com/magabrotheeeer/connect-bot/internal/lib/callback"
	"github.com/magabrotheeeer/connect-bot/internal/models"
)

// Button — inline‑кнопка.
type Button struct {
	Text string
	Data string
}

// Keyboard описывает клавиатуру независимо от транспорта.
// Заполняется либо Reply, либо Inline; Remove убирает reply‑клавиатуру.
type Keyboard struct {
	Reply   [][]string
	OneTime bool
	Inline  [][]Button
	Remove  bool
}

// Кнопки главного меню.
const (
	BtnMyProfile   = "👤 Мой профиль"
	BtnFindJob     = "🔍 Найти работу"
	BtnMyOrders    = "📦 Мои заказы"
	BtnCreateOrder = "➕ Создать заказ"
)

// Варианты ответа на вопрос о публикации анкеты.
const (
	BtnPublishYes = "Да, опубликовать"
	BtnPublishNo  = "Нет, пропустить"
)

var removeKeyboard = &Keyboard{Remove: true}

func mainMenuKeyboard() *Keyboard {
	return &Keyboard{Reply: [][]string{
		{BtnMyProfile, BtnFindJob},
		{BtnMyOrders, BtnCreateOrder},
	}}
}

func roleKeyboard() *Keyboard {
	labels := models.RoleLabels()
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	return &Keyboard{Reply: rows, OneTime: true}
}

func confirmPublicationKeyboard() *Keyboard {
	return &Keyboard{Reply: [][]string{{BtnPublishYes, BtnPublishNo}}, OneTime: true}
}

func profileKeyboard() *Keyboard {
	return &Keyboard{Inline: [][]Button{
		{{Text: "✏️ Редактировать профиль", Data: string(callback.EditProfile)}},
	}}
}

func editProfileKeyboard() *Keyboard {
	return &Keyboard{Inline: [][]Button{
		{
			{Text: "Имя", Data: callback.ForField(string(models.FieldName))},
			{Text: "Сфера", Data: callback.ForField(string(models.FieldSphere))},
		},
		{
			{Text: "О себе", Data: callback.ForField(string(models.FieldBio))},
			{Text: "Портфолио", Data: callback.ForField(string(models.FieldPortfolio))},
		},
		{{Text: "Роль", Data: callback.ForField(string(models.FieldRole))}},
		{{Text: "👀 Статус видимости", Data: string(callback.ToggleVisibility)}},
		{{Text: "🔙 Назад в профиль", Data: string(callback.BackToProfile)}},
	}}
}

func jobSearchKeyboard(orderID int64) *Keyboard {
	return &Keyboard{Inline: [][]Button{
		{
			{Text: "✅ Откликнуться", Data: callback.ForOrder(callback.Apply, orderID)},
			{Text: "➡️ Пропустить", Data: string(callback.SkipOrder)},
		},
		{{Text: "🚪 Закончить поиск", Data: string(callback.StopSearch)}},
	}}
}

func orderManagementKeyboard(orderID int64, closed bool) *Keyboard {
	toggle := Button{Text: "🔒 Закрыть заказ", Data: callback.ForOrder(callback.CloseOrder, orderID)}
	if closed {
		toggle = Button{Text: "🚀 Открыть заказ снова", Data: callback.ForOrder(callback.ReopenOrder, orderID)}
	}
	return &Keyboard{Inline: [][]Button{{
		toggle,
		{Text: "🗑️ Удалить заказ", Data: callback.ForOrder(callback.DeleteOrder, orderID)},
	}}}
}

func confirmDeleteKeyboard(orderID int64) *Keyboard {
	return &Keyboard{Inline: [][]Button{{
		{Text: "✅ Да, удалить", Data: callback.ForOrder(callback.ConfirmDelete, orderID)},
		{Text: "❌ Отмена", Data: string(callback.CancelDelete)},
	}}}
}
