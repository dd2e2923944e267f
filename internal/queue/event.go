// Package queue defines the domain events exchanged over RabbitMQ, the
// publisher the service layer uses and the consumer that records them.
package queue

// Event types published by the marketplace.
const (
    ListingCreated       = "listing.created"
    ListingModerated     = "listing.moderated"
    ListingArchived      = "listing.archived"
    SubscriptionAssigned = "subscription.assigned"
    SubscriptionExpired  = "subscription.expired"
    ChatMessage          = "chat.message"
    OfferCreated         = "offer.created"
    OfferResponded       = "offer.responded"
)

// Event is the single payload shape on the events queue.  Fields that do
// not apply to a given Type are left zero and omitted from the JSON.
type Event struct {
    Type           string `json:"type"`
    UserID         uint64 `json:"user_id,omitempty"`
    ListingID      uint64 `json:"listing_id,omitempty"`
    SubscriptionID uint64 `json:"subscription_id,omitempty"`
    ChatID         uint64 `json:"chat_id,omitempty"`
    MessageID      uint64 `json:"message_id,omitempty"`
    OfferID        uint64 `json:"offer_id,omitempty"`
    Status         string `json:"status,omitempty"`
    Detail         string `json:"detail,omitempty"`
    Count          int64  `json:"count,omitempty"`
    OccurredAt     string `json:"occurred_at"`
}
