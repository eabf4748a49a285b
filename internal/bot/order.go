package bot

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/connect-bot/internal/lib/format"
	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/models"
	"github.com/magabrotheeeer/connect-bot/internal/services/notify"
	"github.com/magabrotheeeer/connect-bot/internal/session"
)

const (
	keyTitle       = "title"
	keyDescription = "description"
)

// createOrder начинает диалог создания заказа. Доступно заказчикам.
func (b *Bot) createOrder(ctx context.Context, ev Event) error {
	user, err := b.store.GetUser(ctx, ev.UserID)
	if isNotFound(err) {
		b.send(ctx, ev.ChatID, textNeedRegistration, nil)
		return nil
	}
	if err != nil {
		return err
	}
	if !user.Role.CanPost() {
		b.send(ctx, ev.ChatID, textCannotPost, nil)
		return nil
	}

	if err = b.saveState(ctx, session.New(ev.UserID), session.StateOrderTitle); err != nil {
		return err
	}
	b.send(ctx, ev.ChatID, textAskOrderTitle, removeKeyboard)
	return nil
}

func (b *Bot) orderTitle(ctx context.Context, ev Event, sess *session.Session) error {
	title, ok := b.textInput(ctx, ev, ruleShort)
	if !ok {
		return nil
	}
	sess.Set(keyTitle, title)
	if err := b.saveState(ctx, sess, session.StateOrderDescription); err != nil {
		return err
	}
	b.send(ctx, ev.ChatID, textAskOrderDescription, nil)
	return nil
}

func (b *Bot) orderDescription(ctx context.Context, ev Event, sess *session.Session) error {
	description, ok := b.textInput(ctx, ev, ruleLong)
	if !ok {
		return nil
	}
	sess.Set(keyDescription, description)
	if err := b.saveState(ctx, sess, session.StateOrderPhoto); err != nil {
		return err
	}
	b.send(ctx, ev.ChatID, textAskOrderPhoto, nil)
	return nil
}

// orderPhoto принимает фото или прочерк и сохраняет заказ.
func (b *Bot) orderPhoto(ctx context.Context, ev Event, sess *session.Session) error {
	var photoID *string
	switch {
	case ev.PhotoID != "":
		id := ev.PhotoID
		photoID = &id
	case ev.Text == models.PortfolioNone:
	default:
		b.send(ctx, ev.ChatID, textNeedPhoto, nil)
		return nil
	}

	employer, err := b.store.GetUser(ctx, ev.UserID)
	if isNotFound(err) {
		b.send(ctx, ev.ChatID, textNeedRegistration, nil)
		return b.sessions.Clear(ctx, ev.UserID)
	}
	if err != nil {
		return err
	}

	order := models.Order{
		EmployerID:  ev.UserID,
		Title:       sess.Get(keyTitle),
		Description: sess.Get(keyDescription),
		PhotoID:     photoID,
		Status:      models.OrderOpen,
		CreatedAt:   b.now(),
	}
	order.ID, err = b.store.CreateOrder(ctx, order)
	if err != nil {
		return err
	}
	b.log.Info("order created", sl.UserID(ev.UserID), sl.OrderID(order.ID))
	b.metrics.OrderCreated()

	b.send(ctx, ev.ChatID, fmt.Sprintf(textOrderCreated, format.Escape(order.Title)), mainMenuKeyboard())
	if err = b.sessions.Clear(ctx, ev.UserID); err != nil {
		b.log.Error("failed to clear session", sl.UserID(ev.UserID), sl.Err(err))
	}

	b.notifier.Dispatch(notify.Event{Kind: notify.KindOrderCreated, User: employer, Order: &order})
	return nil
}
