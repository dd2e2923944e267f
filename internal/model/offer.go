package model

import "time"

// Offer statuses.
const (
    OfferPending  = "pending"
    OfferAccepted = "accepted"
    OfferRejected = "rejected"
)

// Offer is a buyer's price proposal on a listing.
type Offer struct {
    ID        uint64    `json:"id" db:"id"`
    ListingID uint64    `json:"listingId" db:"listing_id"`
    BuyerID   uint64    `json:"buyerId" db:"buyer_id"`
    Amount    float64   `json:"amount" db:"amount"`
    Currency  string    `json:"currency" db:"currency"`
    Message   *string   `json:"message" db:"message"`
    Status    string    `json:"status" db:"status"`
    CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Comment is a free-text remark attached to a listing.
type Comment struct {
    ID        uint64    `json:"id" db:"id"`
    ListingID uint64    `json:"listingId" db:"listing_id"`
    UserID    uint64    `json:"userId" db:"user_id"`
    Author    string    `json:"author" db:"author"`
    Content   string    `json:"content" db:"content"`
    CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Rating is a 1..5 score a user gives a listing.
type Rating struct {
    ID        uint64    `json:"id" db:"id"`
    ListingID uint64    `json:"listingId" db:"listing_id"`
    UserID    uint64    `json:"userId" db:"user_id"`
    Rating    int       `json:"rating" db:"rating"`
    CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Stats are the counters shown on the admin dashboard.
type Stats struct {
    TotalUsers           int64 `json:"totalUsers"`
    TotalListings        int64 `json:"totalListings"`
    ActiveSubscriptions  int64 `json:"activeSubscriptions"`
    PendingVerifications int64 `json:"pendingVerifications"`
}
