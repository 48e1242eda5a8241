package commerce

const (
	TopicPurchaseOrderReceived = "commerce.purchase-order.received"
	TopicListingModerated      = "commerce.listing.moderated"
	TopicSaleCompleted         = "commerce.sale.completed"
	TopicOrderStatusChanged    = "commerce.order.status-changed"
)

// AllTopics is what the status-cache projector subscribes to.
var AllTopics = []string{
	TopicPurchaseOrderReceived,
	TopicListingModerated,
	TopicSaleCompleted,
	TopicOrderStatusChanged,
}

// Partition key = entity id, so all events for one entity keep their order.
func PartitionKey(entityID string) []byte { return []byte(entityID) }
