package rabbitmq

// Ключи маршрутизации событий.
const (
	RoutingUserRegistered = "user.registered"
	RoutingOrderCreated   = "order.created"
)

// QueueConfig — очередь и ключ, с которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// EventQueues возвращает очереди, которые бот объявляет при старте,
// чтобы события не терялись до появления потребителей.
func EventQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "connectbot.user_registered", RoutingKey: RoutingUserRegistered},
		{QueueName: "connectbot.order_created", RoutingKey: RoutingOrderCreated},
	}
}
