package service

import (
    "context"
    "errors"
    "strings"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/queue"
    "github.com/iliyamo/lotty-marketplace/internal/repository"
)

// OfferInput is the body of POST /api/offers.
type OfferInput struct {
    ListingID uint64  `json:"listingId" validate:"required"`
    Amount    float64 `json:"amount" validate:"gt=0"`
    Currency  string  `json:"currency" validate:"required,oneof=PYG USD"`
    Message   *string `json:"message" validate:"omitempty,max=1000"`
}

// OfferService handles price offers on listings.
type OfferService struct {
    offers   OfferStore
    listings ListingStore
    events   Publisher
}

func NewOfferService(offers OfferStore, listings ListingStore, events Publisher) *OfferService {
    if offers == nil || listings == nil {
        panic("nil dependency")
    }
    return &OfferService{offers: offers, listings: listings, events: events}
}

// MakeOffer records a pending offer by buyer.  Offers on one's own listing
// and on archived listings are refused.
func (s *OfferService) MakeOffer(ctx context.Context, buyer *model.User, in OfferInput) (*model.Offer, error) {
    if buyer == nil {
        return nil, ErrUnauthorized
    }
    in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
    in.Message = blankToNil(in.Message)
    if err := validateStruct(&in); err != nil {
        return nil, err
    }
    l, err := s.listings.GetByID(ctx, in.ListingID)
    if errors.Is(err, repository.ErrListingNotFound) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if l.Status == model.ListingArchived {
        return nil, invalid("listingId", "listing is archived")
    }
    if l.UserID == buyer.ID {
        return nil, invalid("listingId", "you cannot make an offer on your own listing")
    }
    o := &model.Offer{ListingID: l.ID, BuyerID: buyer.ID, Amount: in.Amount, Currency: in.Currency, Message: in.Message}
    if err := s.offers.Create(ctx, o); err != nil {
        return nil, err
    }
    emit(ctx, s.events, queue.Event{Type: queue.OfferCreated, UserID: buyer.ID, ListingID: l.ID, OfferID: o.ID, Status: o.Status})
    return o, nil
}

// Respond accepts or rejects a pending offer.  Only the listing owner or an
// admin may respond; an offer that was already answered is a validation
// error.
func (s *OfferService) Respond(ctx context.Context, caller *model.User, offerID uint64, status string) (*model.Offer, error) {
    if caller == nil {
        return nil, ErrUnauthorized
    }
    status = strings.ToLower(strings.TrimSpace(status))
    if status != model.OfferAccepted && status != model.OfferRejected {
        return nil, invalid("status", "status must be accepted or rejected")
    }
    o, err := s.offers.GetByID(ctx, offerID)
    if errors.Is(err, repository.ErrOfferNotFound) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    l, err := s.listings.GetByID(ctx, o.ListingID)
    if errors.Is(err, repository.ErrListingNotFound) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if !canSee(caller, l.UserID) {
        return nil, ErrForbidden
    }
    changed, err := s.offers.UpdateStatus(ctx, o.ID, status)
    if err != nil {
        return nil, err
    }
    if !changed {
        return nil, invalid("status", "offer has already been answered")
    }
    o.Status = status
    emit(ctx, s.events, queue.Event{Type: queue.OfferResponded, UserID: caller.ID, ListingID: l.ID, OfferID: o.ID, Status: status})
    return o, nil
}

// ListOffers returns offers the user made and offers on the user's
// listings.
func (s *OfferService) ListOffers(ctx context.Context, user *model.User) ([]model.Offer, error) {
    if user == nil {
        return nil, ErrUnauthorized
    }
    return s.offers.ListForUser(ctx, user.ID)
}
