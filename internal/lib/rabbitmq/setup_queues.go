package rabbitmq

// Exchange is the direct exchange all notification events go through.
const Exchange = "notifications"

// DeadLetterExchange receives deliveries the sender gave up on.
const DeadLetterExchange = "notifications.dlx"

// Routing keys of the events published by the API and the scheduler.
const (
	RoutingDealMatched  = "deal.matched"
	RoutingDealExpiring = "deal.expiring"
)

// Queue names consumed by the notification sender.
const (
	QueueDealMatched  = "notification.deal_matched"
	QueueDealExpiring = "notification.deal_expiring"

	// QueueFailed holds dead-lettered events of every kind for inspection.
	QueueFailed = "notification.failed"
)

// QueueConfig binds a durable queue to a routing key.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues lists the queues declared by every binary on startup.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueDealMatched, RoutingKey: RoutingDealMatched},
		{QueueName: QueueDealExpiring, RoutingKey: RoutingDealExpiring},
	}
}
