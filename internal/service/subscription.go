package service

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/queue"
    "github.com/iliyamo/lotty-marketplace/internal/repository"
)

// SubscriptionService answers the subscription gate and assigns plans.
type SubscriptionService struct {
    subs   SubscriptionStore
    events Publisher
    now    Clock
}

func NewSubscriptionService(subs SubscriptionStore, events Publisher) *SubscriptionService {
    if subs == nil {
        panic("nil subscription store")
    }
    return &SubscriptionService{subs: subs, events: events, now: utcNow}
}

// CheckActiveSubscription reports whether the user's current subscription
// (the active one, else the latest by end date) is active and ends strictly
// after now.  A user without any
// subscription is simply inactive.
func (s *SubscriptionService) CheckActiveSubscription(ctx context.Context, userID uint64) (bool, error) {
    sub, err := s.subs.Latest(ctx, userID)
    if errors.Is(err, repository.ErrSubscriptionNotFound) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return sub.ActiveAt(s.now()), nil
}

// Current returns the user's current subscription (nil when there is none)
// and whether it is effectively active.
func (s *SubscriptionService) Current(ctx context.Context, userID uint64) (*model.Subscription, bool, error) {
    sub, err := s.subs.Latest(ctx, userID)
    if errors.Is(err, repository.ErrSubscriptionNotFound) {
        return nil, false, nil
    }
    if err != nil {
        return nil, false, err
    }
    return sub, sub.ActiveAt(s.now()), nil
}

// PlanInput is the admin's plan assignment request.
type PlanInput struct {
    PlanType     string `json:"planType"`
    DurationDays int    `json:"durationDays"`
    MaxListings  int    `json:"maxListings"`
}

// AssignPlan gives userID a new active subscription starting now.  Any
// subscription still marked active is expired in the same transaction, so
// a user never holds two active plans.
func (s *SubscriptionService) AssignPlan(ctx context.Context, userID uint64, in PlanInput) (*model.Subscription, error) {
    in.PlanType = strings.TrimSpace(in.PlanType)
    switch {
    case in.PlanType == "":
        return nil, invalid("planType", "plan type is required")
    case len(in.PlanType) > 50:
        return nil, invalid("planType", "plan type is too long")
    case in.DurationDays <= 0:
        return nil, invalid("durationDays", "duration must be at least one day")
    case in.MaxListings < model.UnlimitedListings:
        return nil, invalid("maxListings", "max listings must be -1 (unlimited) or more")
    }
    start := s.now().Truncate(time.Second)
    sub := &model.Subscription{
        UserID:      userID,
        PlanType:    in.PlanType,
        StartDate:   start,
        EndDate:     start.AddDate(0, 0, in.DurationDays),
        MaxListings: in.MaxListings,
    }
    if err := s.subs.Assign(ctx, sub); err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    emit(ctx, s.events, queue.Event{
        Type:           queue.SubscriptionAssigned,
        UserID:         userID,
        SubscriptionID: sub.ID,
        Detail:         sub.PlanType,
    })
    return sub, nil
}
