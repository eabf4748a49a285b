// Package telegram связывает бота с Telegram Bot API: отправляет сообщения,
// публикует посты в ветки группы и получает обновления long polling'ом.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/connect-bot/internal/bot"
	"github.com/magabrotheeeer/connect-bot/internal/config"
)

// Подпись к фото в Telegram ограничена 1024 символами.
const maxCaption = 1024

// Client отправляет сообщения через Bot API.
type Client struct {
	api     *tgbotapi.BotAPI
	adminID int64
	log     *slog.Logger
}

// New подключается к Bot API. Таймаут HTTP‑клиента учитывает длительность long polling'а.
func New(token string, cfg config.Telegram, adminID int64, log *slog.Logger) (*Client, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, cfg, adminID, log)
}

// NewWithEndpoint позволяет указать адрес Bot API, например локальный сервер.
func NewWithEndpoint(token, endpoint string, cfg config.Telegram, adminID int64, log *slog.Logger) (*Client, error) {
	const op = "telegram.New"

	if err := tgbotapi.SetLogger(logAdapter{log: log}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpClient := &http.Client{Timeout: cfg.TelegramTimeout + time.Duration(cfg.PollTimeout)*time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	api.Debug = cfg.Debug

	log.Info("authorized in telegram", slog.String("bot", api.Self.UserName))
	return &Client{api: api, adminID: adminID, log: log}, nil
}

// Send отправляет HTML‑сообщение.
func (c *Client) Send(ctx context.Context, chatID int64, text string, kb *bot.Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		msg.ReplyMarkup = replyMarkup(kb)
	}
	return c.request(ctx, "telegram.Send", msg)
}

// SendPhoto отправляет фото с подписью. Слишком длинная подпись уходит отдельным сообщением.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoID, caption string, kb *bot.Keyboard) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(photoID))
	if utf8.RuneCountInString(caption) > maxCaption {
		if err := c.request(ctx, "telegram.SendPhoto", photo); err != nil {
			return err
		}
		return c.Send(ctx, chatID, caption, kb)
	}

	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		photo.ReplyMarkup = replyMarkup(kb)
	}
	return c.request(ctx, "telegram.SendPhoto", photo)
}

// Edit меняет текст сообщения и inline‑клавиатуру.
func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, text string, kb *bot.Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = inlineMarkup(kb)
	return c.request(ctx, "telegram.Edit", edit)
}

func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	return c.request(ctx, "telegram.Delete", tgbotapi.NewDeleteMessage(chatID, messageID))
}

// AnswerCallback отвечает на нажатие кнопки всплывающим уведомлением или окном.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	cb := tgbotapi.CallbackConfig{CallbackQueryID: callbackID, Text: text, ShowAlert: alert}
	return c.request(ctx, "telegram.AnswerCallback", cb)
}

// PostText публикует сообщение в ветку группы. topicID 0 — общая лента группы.
func (c *Client) PostText(ctx context.Context, chatID int64, topicID int, text string) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_thread_id", topicID)
	params.AddNonEmpty("text", text)
	params.AddNonEmpty("parse_mode", tgbotapi.ModeHTML)
	return c.makeRequest(ctx, "telegram.PostText", "sendMessage", params)
}

// PostPhoto публикует фото с подписью в ветку группы.
func (c *Client) PostPhoto(ctx context.Context, chatID int64, topicID int, photoID, caption string) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_thread_id", topicID)
	params.AddNonEmpty("photo", photoID)

	long := utf8.RuneCountInString(caption) > maxCaption
	if !long {
		params.AddNonEmpty("caption", caption)
		params.AddNonEmpty("parse_mode", tgbotapi.ModeHTML)
	}
	if err := c.makeRequest(ctx, "telegram.PostPhoto", "sendPhoto", params); err != nil {
		return err
	}
	if long {
		return c.PostText(ctx, chatID, topicID, caption)
	}
	return nil
}

// Alert отправляет сообщение администратору. Без ADMIN_ID ничего не делает.
func (c *Client) Alert(ctx context.Context, text string) error {
	if c.adminID == 0 {
		return nil
	}
	return c.request(ctx, "telegram.Alert", tgbotapi.NewMessage(c.adminID, text))
}

func (c *Client) request(ctx context.Context, op string, msg tgbotapi.Chattable) error {
	return call(ctx, op, func() error {
		_, err := c.api.Request(msg)
		return err
	})
}

func (c *Client) makeRequest(ctx context.Context, op, method string, params tgbotapi.Params) error {
	return call(ctx, op, func() error {
		_, err := c.api.MakeRequest(method, params)
		return err
	})
}

// call выполняет запрос к Bot API с учётом ctx. Библиотека не принимает context,
// поэтому запрос идёт в отдельной горутине, а по истечении ctx вызывающий
// получает ошибку сразу. Сам запрос ограничен таймаутом HTTP‑клиента.
func call(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// logAdapter направляет внутренний лог библиотеки в slog.
type logAdapter struct {
	log *slog.Logger
}

func (l logAdapter) Println(v ...interface{}) {
	l.log.Debug(fmt.Sprint(v...), slog.String("component", "tgbotapi"))
}

func (l logAdapter) Printf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...), slog.String("component", "tgbotapi"))
}
