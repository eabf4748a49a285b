package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/connect-bot/internal/lib/format"
	"github.com/magabrotheeeer/connect-bot/internal/models"
)

// SheetWriter добавляет строки в таблицу.
type SheetWriter interface {
	AppendUser(ctx context.Context, u *models.User) error
	AppendOrder(ctx context.Context, o *models.Order, employerUsername string) error
}

// SheetHook дублирует пользователей и заказы в таблицу.
type SheetHook struct {
	sheets SheetWriter
}

func NewSheetHook(sheets SheetWriter) *SheetHook {
	return &SheetHook{sheets: sheets}
}

func (h *SheetHook) Name() string { return "sheet" }

func (h *SheetHook) Action(e Event) string {
	if e.Kind == KindOrderCreated {
		return "добавить заказ в Google Таблицу"
	}
	return "добавить пользователя в Google Таблицу"
}

func (h *SheetHook) Handle(ctx context.Context, e Event) error {
	switch e.Kind {
	case KindUserRegistered:
		return h.sheets.AppendUser(ctx, e.User)
	case KindOrderCreated:
		username := ""
		if e.User != nil {
			username = e.User.Username
		}
		return h.sheets.AppendOrder(ctx, e.Order, username)
	}
	return ErrSkipped
}

// Poster публикует сообщения в ветки группы.
type Poster interface {
	PostText(ctx context.Context, chatID int64, topicID int, text string) error
	PostPhoto(ctx context.Context, chatID int64, topicID int, photoID, caption string) error
}

// Group — группа и её ветки для публикаций.
type Group struct {
	ChatID            int64
	NetworkingTopicID int
	OrdersTopicID     int
}

// ChannelHook публикует новых участников и заказы в группе.
type ChannelHook struct {
	poster Poster
	group  Group
}

func NewChannelHook(poster Poster, group Group) *ChannelHook {
	return &ChannelHook{poster: poster, group: group}
}

func (h *ChannelHook) Name() string { return "channel" }

func (h *ChannelHook) Action(e Event) string {
	if e.Kind == KindOrderCreated {
		return "опубликовать заказ в группе"
	}
	return "опубликовать профиль в группе"
}

func (h *ChannelHook) Handle(ctx context.Context, e Event) error {
	if h.group.ChatID == 0 {
		return fmt.Errorf("%w: group is not configured", ErrSkipped)
	}

	switch e.Kind {
	case KindUserRegistered:
		if !e.Publish {
			return fmt.Errorf("%w: user declined publication", ErrSkipped)
		}
		return h.poster.PostText(ctx, h.group.ChatID, h.group.NetworkingTopicID, format.NewMember(e.User))
	case KindOrderCreated:
		text := format.Announcement(e.Order, e.User)
		if e.Order.PhotoID != nil {
			return h.poster.PostPhoto(ctx, h.group.ChatID, h.group.OrdersTopicID, *e.Order.PhotoID, text)
		}
		return h.poster.PostText(ctx, h.group.ChatID, h.group.OrdersTopicID, text)
	}
	return ErrSkipped
}

// Publisher отправляет сообщение в брокер по ключу маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// EventMessage — тело события в брокере.
type EventMessage struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	EntityID   int64     `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventsHook публикует события в RabbitMQ.
type EventsHook struct {
	publisher Publisher
	now       func() time.Time
}

func NewEventsHook(publisher Publisher) *EventsHook {
	return &EventsHook{publisher: publisher, now: time.Now}
}

func (h *EventsHook) Name() string { return "events" }

func (h *EventsHook) Action(Event) string { return "отправить событие в RabbitMQ" }

func (h *EventsHook) Handle(ctx context.Context, e Event) error {
	msg := EventMessage{
		ID:         uuid.NewString(),
		Kind:       e.Kind,
		EntityID:   e.EntityID(),
		OccurredAt: h.now().UTC(),
	}
	return h.publisher.Publish(ctx, string(e.Kind), msg)
}
