package models

// ChangeEventType identifies the kind of availability transition detected by
// the differ.
type ChangeEventType string

const (
	// EventNewProductAvailable fires when a URL is seen for the first time and
	// is already purchasable.
	EventNewProductAvailable ChangeEventType = "new_product_available"
	// EventBecameAvailable fires when a previously unavailable URL becomes
	// purchasable.
	EventBecameAvailable ChangeEventType = "became_available"
	// EventPriceChanged fires when a URL stays purchasable but its price
	// changes.
	EventPriceChanged ChangeEventType = "price_changed"
)

// ChangeEvent is a notification-worthy transition derived by comparing a
// current probe result against the latest prior state for the same
// (task, URL). Transient: produced by the differ, consumed immediately by
// notifier dispatch, never stored on its own.
type ChangeEvent struct {
	Type      ChangeEventType
	TaskID    string
	Candidate Candidate
	Current   ProbeResult
	OldPrice  *float64
	NewPrice  *float64
}
