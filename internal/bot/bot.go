// Package bot реализует диалоги бота: регистрацию, создание заказов,
// редактирование профиля, поиск работы и управление своими заказами.
//
// Bot получает события, не зависящие от транспорта, хранит шаг диалога
// в session.Store и отвечает через Messenger.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/connect-bot/internal/lib/format"
	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/metrics"
	"github.com/magabrotheeeer/connect-bot/internal/models"
	"github.com/magabrotheeeer/connect-bot/internal/services/feed"
	"github.com/magabrotheeeer/connect-bot/internal/services/notify"
	"github.com/magabrotheeeer/connect-bot/internal/session"
	"github.com/magabrotheeeer/connect-bot/internal/storage"
)

var (
	ruleShort = fmt.Sprintf("required,max=%d", models.ShortTextMax)
	ruleLong  = fmt.Sprintf("required,max=%d", models.LongTextMax)
)

// Messenger отправляет ответы пользователю.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, kb *Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, photoID, caption string, kb *Keyboard) error
	Edit(ctx context.Context, chatID int64, messageID int, text string, kb *Keyboard) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// Store — методы хранилища, которые использует бот.
type Store interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateUserField(ctx context.Context, userID int64, field models.ProfileField, value *string) error
	SetUserActive(ctx context.Context, userID int64, active bool) error
	CreateOrder(ctx context.Context, order models.Order) (int64, error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrdersByEmployer(ctx context.Context, employerID int64) ([]*models.Order, error)
	SetOrderStatus(ctx context.Context, orderID, ownerID int64, status models.OrderStatus) (int64, error)
	DeleteOrder(ctx context.Context, orderID, ownerID int64) (int64, error)
}

// Feed выбирает следующий заказ для ленты.
type Feed interface {
	Next(ctx context.Context, viewerID, cursor int64) (feed.Pick, error)
}

// Notifier запускает действия после сохранения данных.
type Notifier interface {
	Dispatch(e notify.Event)
}

// Deps — зависимости бота.
type Deps struct {
	Store    Store
	Sessions session.Store
	Feed     Feed
	Notifier Notifier
	Messages Messenger
	Metrics  *metrics.Metrics
	Log      *slog.Logger
	// ApplyTimeout ограничивает отправку отклика заказчику.
	ApplyTimeout time.Duration
}

// Bot обрабатывает события пользователей.
type Bot struct {
	store        Store
	sessions     session.Store
	feed         Feed
	notifier     Notifier
	msg          Messenger
	metrics      *metrics.Metrics
	log          *slog.Logger
	validate     *validator.Validate
	applyTimeout time.Duration
	now          func() time.Time
}

// New создаёт бота.
func New(d Deps) *Bot {
	applyTimeout := d.ApplyTimeout
	if applyTimeout <= 0 {
		applyTimeout = 10 * time.Second
	}
	return &Bot{
		store:        d.Store,
		sessions:     d.Sessions,
		feed:         d.Feed,
		notifier:     d.Notifier,
		msg:          d.Messages,
		metrics:      d.Metrics,
		log:          d.Log,
		validate:     validator.New(),
		applyTimeout: applyTimeout,
		now:          time.Now,
	}
}

// Handle обрабатывает одно событие. Ошибки логируются, пользователь получает общий ответ.
func (b *Bot) Handle(ctx context.Context, ev Event) {
	b.metrics.Update(ev.Kind())
	log := b.log.With(sl.UserID(ev.UserID), slog.String("kind", ev.Kind()))

	var err error
	switch {
	case len(ev.NewMembers) > 0:
		err = b.greet(ctx, ev)
	case ev.Callback != nil:
		err = b.handleCallback(ctx, ev, log)
	case ev.Private:
		err = b.handleMessage(ctx, ev)
	default:
		return
	}

	if err != nil {
		log.Error("failed to handle event", sl.Err(err))
		if ev.Private || ev.Callback != nil {
			b.send(ctx, ev.ChatID, textInternalError, nil)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, ev Event) error {
	if strings.HasPrefix(ev.Text, "/start") {
		return b.start(ctx, ev)
	}

	sess, err := b.sessions.Get(ctx, ev.UserID)
	if err != nil {
		return err
	}

	if !sess.State.IsRegistration() {
		if handled, err := b.handleMenu(ctx, ev); handled {
			return err
		}
	}

	switch sess.State {
	case session.StateRegFullName:
		return b.regFullName(ctx, ev, sess)
	case session.StateRegSphere:
		return b.regSphere(ctx, ev, sess)
	case session.StateRegBio:
		return b.regBio(ctx, ev, sess)
	case session.StateRegPortfolio:
		return b.regPortfolio(ctx, ev, sess)
	case session.StateRegRole:
		return b.regRole(ctx, ev, sess)
	case session.StateRegConfirm:
		return b.regConfirm(ctx, ev, sess)
	case session.StateOrderTitle:
		return b.orderTitle(ctx, ev, sess)
	case session.StateOrderDescription:
		return b.orderDescription(ctx, ev, sess)
	case session.StateOrderPhoto:
		return b.orderPhoto(ctx, ev, sess)
	case session.StateProfileNewValue:
		return b.profileNewValue(ctx, ev, sess)
	}
	return b.fallback(ctx, ev)
}

// handleMenu обрабатывает кнопки главного меню. Незавершённый диалог сбрасывается.
func (b *Bot) handleMenu(ctx context.Context, ev Event) (bool, error) {
	var handler func(context.Context, Event) error
	switch ev.Text {
	case BtnMyProfile:
		handler = b.myProfile
	case BtnFindJob:
		handler = b.findJob
	case BtnMyOrders:
		handler = b.myOrders
	case BtnCreateOrder:
		handler = b.createOrder
	default:
		return false, nil
	}
	if err := b.sessions.Clear(ctx, ev.UserID); err != nil {
		return true, err
	}
	return true, handler(ctx, ev)
}

func (b *Bot) fallback(ctx context.Context, ev Event) error {
	_, err := b.store.GetUser(ctx, ev.UserID)
	if isNotFound(err) {
		b.send(ctx, ev.ChatID, textNeedRegistration, nil)
		return nil
	}
	if err != nil {
		return err
	}
	b.send(ctx, ev.ChatID, textUseMenu, mainMenuKeyboard())
	return nil
}

// greet приветствует новых участников группы.
func (b *Bot) greet(ctx context.Context, ev Event) error {
	for _, m := range ev.NewMembers {
		if m.IsBot {
			continue
		}
		b.send(ctx, ev.ChatID, fmt.Sprintf(textGroupGreeting, format.Escape(m.FullName)), nil)
		b.log.Info("greeted new group member", sl.UserID(m.ID), slog.Int64("chat_id", ev.ChatID))
	}
	return nil
}

// textInput проверяет текстовый ответ шага. Если ответ не подходит, пользователь
// получает подсказку, а шаг не меняется.
func (b *Bot) textInput(ctx context.Context, ev Event, rule string) (string, bool) {
	if ev.PhotoID != "" || ev.Text == "" {
		b.send(ctx, ev.ChatID, textNeedText, nil)
		return "", false
	}
	text := strings.TrimSpace(ev.Text)
	if err := b.validate.Var(text, rule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
			limit := models.ShortTextMax
			if rule == ruleLong {
				limit = models.LongTextMax
			}
			b.send(ctx, ev.ChatID, fmt.Sprintf(textTooLong, limit), nil)
			return "", false
		}
		b.send(ctx, ev.ChatID, textEmptyText, nil)
		return "", false
	}
	return text, true
}

// send отправляет сообщение; ошибка доставки только логируется.
func (b *Bot) send(ctx context.Context, chatID int64, text string, kb *Keyboard) {
	if err := b.msg.Send(ctx, chatID, text, kb); err != nil {
		b.log.Error("failed to send message", slog.Int64("chat_id", chatID), sl.Err(err))
	}
}

func (b *Bot) deleteMessage(ctx context.Context, chatID int64, messageID int) {
	if err := b.msg.Delete(ctx, chatID, messageID); err != nil {
		b.log.Warn("failed to delete message", slog.Int64("chat_id", chatID), sl.Err(err))
	}
}

func (b *Bot) saveState(ctx context.Context, sess *session.Session, state session.State) error {
	sess.State = state
	return b.sessions.Save(ctx, sess)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
