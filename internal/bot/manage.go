package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/connect-bot/internal/lib/format"
	"github.com/magabrotheeeer/connect-bot/internal/lib/sl"
	"github.com/magabrotheeeer/connect-bot/internal/models"
)

// myOrders присылает список заказов пользователя с кнопками управления.
func (b *Bot) myOrders(ctx context.Context, ev Event) error {
	orders, err := b.store.ListOrdersByEmployer(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		b.send(ctx, ev.ChatID, textNoOrders, mainMenuKeyboard())
		return nil
	}

	b.send(ctx, ev.ChatID, textOrdersHeader, nil)
	for _, o := range orders {
		b.send(ctx, ev.ChatID, format.OwnOrder(o), orderManagementKeyboard(o.ID, o.IsClosed()))
	}
	return nil
}

func (b *Bot) setOrderStatus(ctx context.Context, ev Event, orderID int64, status models.OrderStatus) (reply, error) {
	affected, err := b.store.SetOrderStatus(ctx, orderID, ev.UserID, status)
	if err != nil {
		return reply{}, err
	}
	if affected == 0 {
		return reply{text: textOrderNotOwned, alert: true}, nil
	}
	b.log.Info("order status changed", sl.UserID(ev.UserID), sl.OrderID(orderID), slog.String("status", string(status)))

	text := textOrderReopened
	if status == models.OrderClosed {
		text = textOrderClosed
	}
	if err = b.msg.Edit(ctx, ev.ChatID, ev.Callback.MessageID, fmt.Sprintf(text, orderID), nil); err != nil {
		b.log.Warn("failed to edit message", sl.UserID(ev.UserID), sl.Err(err))
	}
	return reply{}, nil
}

func (b *Bot) deletePrompt(ctx context.Context, ev Event, orderID int64) (reply, error) {
	text := fmt.Sprintf(textConfirmDelete, orderID)
	if err := b.msg.Edit(ctx, ev.ChatID, ev.Callback.MessageID, text, confirmDeleteKeyboard(orderID)); err != nil {
		return reply{}, err
	}
	return reply{}, nil
}

func (b *Bot) confirmDelete(ctx context.Context, ev Event, orderID int64) (reply, error) {
	affected, err := b.store.DeleteOrder(ctx, orderID, ev.UserID)
	if err != nil {
		return reply{}, err
	}
	if affected == 0 {
		return reply{text: textOrderNotOwned, alert: true}, nil
	}
	b.log.Info("order deleted", sl.UserID(ev.UserID), sl.OrderID(orderID))

	if err = b.msg.Edit(ctx, ev.ChatID, ev.Callback.MessageID, fmt.Sprintf(textOrderDeleted, orderID), nil); err != nil {
		b.log.Warn("failed to edit message", sl.UserID(ev.UserID), sl.Err(err))
	}
	return reply{text: textOrderDeletedAck}, nil
}

func (b *Bot) cancelDelete(ctx context.Context, ev Event) (reply, error) {
	b.deleteMessage(ctx, ev.ChatID, ev.Callback.MessageID)
	b.send(ctx, ev.ChatID, textDeleteCanceled, nil)
	return reply{}, nil
}
