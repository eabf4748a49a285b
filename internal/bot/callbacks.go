package bot

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/connect-bot/internal/lib/callback"
	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/models"
)

// reply — ответ на нажатие кнопки. Пустой text просто гасит индикатор загрузки.
type reply struct {
	text  string
	alert bool
}

// handleCallback разбирает данные кнопки и отвечает на нажатие ровно один раз.
func (b *Bot) handleCallback(ctx context.Context, ev Event, log *slog.Logger) error {
	data, err := callback.Parse(ev.Callback.Data)
	if err != nil {
		log.Warn("unknown callback", slog.String("data", ev.Callback.Data), sl.Err(err))
		b.answer(ctx, ev, reply{})
		return nil
	}

	r, err := b.routeCallback(ctx, ev, data)
	b.answer(ctx, ev, r)
	return err
}

func (b *Bot) routeCallback(ctx context.Context, ev Event, data callback.Data) (reply, error) {
	switch data.Action {
	case callback.Apply:
		return b.apply(ctx, ev, data.OrderID)
	case callback.SkipOrder:
		return b.skipOrder(ctx, ev)
	case callback.StopSearch:
		return b.stopSearch(ctx, ev)
	case callback.CloseOrder:
		return b.setOrderStatus(ctx, ev, data.OrderID, models.OrderClosed)
	case callback.ReopenOrder:
		return b.setOrderStatus(ctx, ev, data.OrderID, models.OrderOpen)
	case callback.DeleteOrder:
		return b.deletePrompt(ctx, ev, data.OrderID)
	case callback.ConfirmDelete:
		return b.confirmDelete(ctx, ev, data.OrderID)
	case callback.CancelDelete:
		return b.cancelDelete(ctx, ev)
	case callback.EditProfile:
		return b.editProfileMenu(ctx, ev)
	case callback.BackToProfile:
		return b.backToProfile(ctx, ev)
	case callback.ToggleVisibility:
		return b.toggleVisibility(ctx, ev)
	case callback.EditField:
		field, ok := models.ParseProfileField(data.Field)
		if !ok {
			b.log.Warn("unknown profile field", slog.String("field", data.Field), sl.UserID(ev.UserID))
			return reply{}, nil
		}
		return b.editField(ctx, ev, field)
	}
	return reply{}, nil
}

func (b *Bot) answer(ctx context.Context, ev Event, r reply) {
	if err := b.msg.AnswerCallback(ctx, ev.Callback.ID, r.text, r.alert); err != nil {
		b.log.Warn("failed to answer callback", sl.UserID(ev.UserID), sl.Err(err))
	}
}
