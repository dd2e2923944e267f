package model

import "time"

// Subscription statuses.
const (
    SubscriptionActive  = "active"
    SubscriptionExpired = "expired"
)

// UnlimitedListings is the MaxListings value of plans without a quota.
const UnlimitedListings = -1

// Subscription is a time-bounded entitlement to publish listings.  Status
// can lag reality until the expiry sweep runs, so callers decide
// effective activity with ActiveAt rather than Status alone.
type Subscription struct {
    ID          uint64    `json:"id" db:"id"`
    UserID      uint64    `json:"userId" db:"user_id"`
    PlanType    string    `json:"planType" db:"plan_type"`
    Status      string    `json:"status" db:"status"`
    StartDate   time.Time `json:"startDate" db:"start_date"`
    EndDate     time.Time `json:"endDate" db:"end_date"`
    MaxListings int       `json:"maxListings" db:"max_listings"`
}

// ActiveAt reports whether the subscription is marked active and its end
// date lies strictly after now.
func (s *Subscription) ActiveAt(now time.Time) bool {
    return s != nil && s.Status == SubscriptionActive && s.EndDate.After(now)
}

// UserWithSubscription is a row of the admin user list: the account plus
// its most recent subscription by end date, if any.
type UserWithSubscription struct {
    User
    Subscription *Subscription `json:"subscription"`
}
