package models

import "time"

// OrderStatus — статус заказа.
type OrderStatus string

const (
	OrderOpen   OrderStatus = "open"
	OrderClosed OrderStatus = "closed"
)

// Order — заказ, опубликованный заказчиком.
type Order struct {
	ID          int64
	EmployerID  int64
	Title       string
	Description string
	PhotoID     *string // file_id фото в Telegram, nil — без фото
	Status      OrderStatus
	CreatedAt   time.Time
}

// IsClosed сообщает, закрыт ли заказ.
func (o *Order) IsClosed() bool {
	return o.Status == OrderClosed
}

// FeedOrder — заказ из ленты вместе с данными заказчика для карточки.
type FeedOrder struct {
	Order
	EmployerName     string
	EmployerUsername string
}

// ApplicationStatus — статус отклика.
type ApplicationStatus string

const ApplicationPending ApplicationStatus = "pending"

// Application — отклик исполнителя на заказ. Таблица заведена,
// но отклики пока доставляются только личным сообщением заказчику.
type Application struct {
	ID        int64
	OrderID   int64
	WorkerID  int64
	Status    ApplicationStatus
	CreatedAt time.Time
}

// ViewedOrder — отметка о том, что заказ был показан пользователю
// в текущем круге просмотра ленты.
type ViewedOrder struct {
	ID       int64
	ViewerID int64
	OrderID  int64
	ViewedAt time.Time
}

// FeedFilter — условия выборки следующего заказа для ленты.
type FeedFilter struct {
	ViewerID int64     // Собственные заказы зрителя не показываются
	Since    time.Time // Заказы старше этой отметки считаются устаревшими
	Exclude  []int64   // Уже показанные заказы
}
