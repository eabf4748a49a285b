package bot

import (
	"context"
	"errors"
	"strconv"

	"github.com/magabrotheeeer/connect-bot/internal/lib/format"
	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/services/feed"
	"github.com/magabrotheeeer/connect-bot/internal/session"
)

const keyCurrentOrder = "current_order"

// findJob запускает ленту заказов. Доступно исполнителям.
func (b *Bot) findJob(ctx context.Context, ev Event) error {
	user, err := b.store.GetUser(ctx, ev.UserID)
	if isNotFound(err) {
		b.send(ctx, ev.ChatID, textNeedRegistration, nil)
		return nil
	}
	if err != nil {
		return err
	}
	if !user.Role.CanSearch() {
		b.send(ctx, ev.ChatID, textCannotSearch, nil)
		return nil
	}

	b.send(ctx, ev.ChatID, textSearchStarted, nil)
	return b.showNextOrder(ctx, ev.UserID, ev.ChatID, 0)
}

// showNextOrder показывает следующий заказ ленты. cursor — заказ, который был на экране.
func (b *Bot) showNextOrder(ctx context.Context, userID, chatID, cursor int64) error {
	pick, err := b.feed.Next(ctx, userID, cursor)
	if errors.Is(err, feed.ErrExhausted) {
		if err = b.sessions.Clear(ctx, userID); err != nil {
			return err
		}
		b.send(ctx, chatID, textFeedExhausted, mainMenuKeyboard())
		return nil
	}
	if err != nil {
		return err
	}

	if pick.Recycled {
		b.send(ctx, chatID, textFeedRecycled, nil)
	}

	order := pick.Order
	sess := session.New(userID)
	sess.Set(keyCurrentOrder, strconv.FormatInt(order.ID, 10))
	if err = b.saveState(ctx, sess, session.StateSearch); err != nil {
		return err
	}

	card := format.FeedCard(order)
	kb := jobSearchKeyboard(order.ID)
	if order.PhotoID != nil {
		err = b.msg.SendPhoto(ctx, chatID, *order.PhotoID, card, kb)
	} else {
		err = b.msg.Send(ctx, chatID, card, kb)
	}
	if err != nil {
		b.log.Error("failed to send feed card", sl.UserID(userID), sl.OrderID(order.ID), sl.Err(err))
	}
	return nil
}

// currentOrder возвращает заказ, который сейчас на экране у пользователя.
func (b *Bot) currentOrder(ctx context.Context, userID int64) int64 {
	sess, err := b.sessions.Get(ctx, userID)
	if err != nil || sess.State != session.StateSearch {
		return 0
	}
	id, err := strconv.ParseInt(sess.Get(keyCurrentOrder), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// apply отправляет профиль исполнителя заказчику и показывает следующий заказ.
func (b *Bot) apply(ctx context.Context, ev Event, orderID int64) (reply, error) {
	worker, err := b.store.GetUser(ctx, ev.UserID)
	if err != nil && !isNotFound(err) {
		return reply{}, err
	}
	order, err := b.store.GetOrder(ctx, orderID)
	if err != nil && !isNotFound(err) {
		return reply{}, err
	}
	if worker == nil || order == nil {
		return reply{text: textApplyNotFound, alert: true}, nil
	}

	r := reply{text: textApplied, alert: true}
	sendCtx, cancel := context.WithTimeout(ctx, b.applyTimeout)
	err = b.msg.Send(sendCtx, order.EmployerID, format.Application(order, worker), nil)
	cancel()
	if err != nil {
		b.log.Error("failed to deliver application",
			sl.UserID(ev.UserID), sl.OrderID(orderID), sl.Err(err))
		r = reply{text: textApplyFailed, alert: true}
	}

	b.deleteMessage(ctx, ev.ChatID, ev.Callback.MessageID)
	return r, b.showNextOrder(ctx, ev.UserID, ev.ChatID, orderID)
}

func (b *Bot) skipOrder(ctx context.Context, ev Event) (reply, error) {
	cursor := b.currentOrder(ctx, ev.UserID)
	b.deleteMessage(ctx, ev.ChatID, ev.Callback.MessageID)
	return reply{}, b.showNextOrder(ctx, ev.UserID, ev.ChatID, cursor)
}

func (b *Bot) stopSearch(ctx context.Context, ev Event) (reply, error) {
	if err := b.sessions.Clear(ctx, ev.UserID); err != nil {
		return reply{}, err
	}
	b.deleteMessage(ctx, ev.ChatID, ev.Callback.MessageID)
	b.send(ctx, ev.ChatID, textSearchStopped, mainMenuKeyboard())
	return reply{}, nil
}
