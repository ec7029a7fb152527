package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicOrderCreated   = "order.created"
	TopicOrderCanceled  = "order.canceled"
	TopicCartCleared    = "cart.cleared"
	TopicProductUpdated = "product.updated"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderCanceled,
		TopicCartCleared,
		TopicProductUpdated,
	}
}
