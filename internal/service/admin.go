package service

import (
    "context"

    "github.com/iliyamo/lotty-marketplace/internal/model"
)

// AdminService backs the admin dashboard.
type AdminService struct {
    users    UserStore
    listings ListingStore
    subs     SubscriptionStore
}

func NewAdminService(users UserStore, listings ListingStore, subs SubscriptionStore) *AdminService {
    if users == nil || listings == nil || subs == nil {
        panic("nil dependency")
    }
    return &AdminService{users: users, listings: listings, subs: subs}
}

// Stats counts users, listings, active subscriptions and listings waiting
// for moderation.
func (s *AdminService) Stats(ctx context.Context) (*model.Stats, error) {
    var st model.Stats
    var err error
    if st.TotalUsers, err = s.users.Count(ctx); err != nil {
        return nil, err
    }
    if st.TotalListings, err = s.listings.Count(ctx); err != nil {
        return nil, err
    }
    if st.ActiveSubscriptions, err = s.subs.CountActive(ctx); err != nil {
        return nil, err
    }
    if st.PendingVerifications, err = s.listings.CountByStatus(ctx, model.ListingPending); err != nil {
        return nil, err
    }
    return &st, nil
}

// Users lists every account with its latest subscription.
func (s *AdminService) Users(ctx context.Context) ([]model.UserWithSubscription, error) {
    out, err := s.users.ListWithSubscriptions(ctx)
    if err != nil {
        return nil, err
    }
    if out == nil {
        out = []model.UserWithSubscription{}
    }
    return out, nil
}
