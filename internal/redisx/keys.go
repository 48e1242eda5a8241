package redisx

import "time"

const (
	// Entity status cache: status:{entity}:{id} -> {"status":"...","updated_at":"..."}
	KeyStatus = "status:%s:%s"

	// Dedup event processing: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

// Entity segments used in status keys.
const (
	EntityPurchaseOrder = "purchase_order"
	EntityListing       = "listing"
	EntityOrder         = "order"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
