package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/connect-bot/internal/bot"
)

// ToEvent переводит обновление Telegram в событие бота.
// false означает, что обновление боту не нужно (посты каналов, правки и т.п.).
func ToEvent(upd tgbotapi.Update) (bot.Event, bool) {
	switch {
	case upd.CallbackQuery != nil:
		return callbackEvent(upd.CallbackQuery)
	case upd.Message != nil:
		return messageEvent(upd.Message)
	}
	return bot.Event{}, false
}

func callbackEvent(q *tgbotapi.CallbackQuery) (bot.Event, bool) {
	if q.From == nil {
		return bot.Event{}, false
	}
	ev := bot.Event{
		UserID:   q.From.ID,
		ChatID:   q.From.ID,
		Private:  true,
		Username: q.From.UserName,
		FullName: fullName(q.From),
		Callback: &bot.Callback{ID: q.ID, Data: q.Data},
	}
	if q.Message != nil && q.Message.Chat != nil {
		ev.ChatID = q.Message.Chat.ID
		ev.Private = q.Message.Chat.IsPrivate()
		ev.Callback.MessageID = q.Message.MessageID
	}
	return ev, true
}

func messageEvent(m *tgbotapi.Message) (bot.Event, bool) {
	if m.From == nil || m.Chat == nil {
		return bot.Event{}, false
	}
	ev := bot.Event{
		UserID:   m.From.ID,
		ChatID:   m.Chat.ID,
		Private:  m.Chat.IsPrivate(),
		Username: m.From.UserName,
		FullName: fullName(m.From),
		Text:     m.Text,
	}
	// последний размер — самый большой
	if n := len(m.Photo); n > 0 {
		ev.PhotoID = m.Photo[n-1].FileID
	}
	for i := range m.NewChatMembers {
		u := &m.NewChatMembers[i]
		ev.NewMembers = append(ev.NewMembers, bot.Member{ID: u.ID, FullName: fullName(u), IsBot: u.IsBot})
	}
	return ev, true
}

func fullName(u *tgbotapi.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// replyMarkup переводит клавиатуру в разметку Bot API.
func replyMarkup(kb *bot.Keyboard) interface{} {
	switch {
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(false)
	case len(kb.Inline) > 0:
		return *inlineMarkup(kb)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Reply))
	for _, row := range kb.Reply {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(text))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = kb.OneTime
	return markup
}

// inlineMarkup возвращает nil, если inline‑кнопок нет.
func inlineMarkup(kb *bot.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if kb == nil || len(kb.Inline) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Inline))
	for _, row := range kb.Inline {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
