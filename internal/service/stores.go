package service

import (
    "context"
    "time"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/queue"
)

// UserStore is the subset of repository.UserRepo the services need.
type UserStore interface {
    GetByID(ctx context.Context, id uint64) (*model.User, error)
    Count(ctx context.Context) (int64, error)
    ListWithSubscriptions(ctx context.Context) ([]model.UserWithSubscription, error)
}

// SubscriptionStore is implemented by repository.SubscriptionRepo.
type SubscriptionStore interface {
    Latest(ctx context.Context, userID uint64) (*model.Subscription, error)
    Assign(ctx context.Context, s *model.Subscription) error
    ListLapsed(ctx context.Context, now time.Time) ([]model.Subscription, error)
    Lapse(ctx context.Context, subID, userID uint64, now time.Time) (bool, int64, error)
    CountActive(ctx context.Context) (int64, error)
}

// ListingStore is implemented by repository.ListingRepo.
type ListingStore interface {
    Create(ctx context.Context, l *model.Listing) error
    GetByID(ctx context.Context, id uint64) (*model.Listing, error)
    GetDetail(ctx context.Context, id uint64) (*model.Listing, error)
    Update(ctx context.Context, l *model.Listing) error
    Archive(ctx context.Context, id uint64) error
    SetModeration(ctx context.Context, id uint64, status string, reason *string) error
    AddImage(ctx context.Context, listingID uint64, url string, isTitle bool) (*model.ListingImage, error)
    Search(ctx context.Context, f model.ListingFilter) ([]model.Listing, error)
    Count(ctx context.Context) (int64, error)
    CountByStatus(ctx context.Context, status string) (int64, error)
}

// ChatStore is implemented by repository.ChatRepo.
type ChatStore interface {
    FindOrCreate(ctx context.Context, listingID, buyerID, sellerID uint64) (*model.Chat, bool, error)
    GetByID(ctx context.Context, id uint64) (*model.Chat, error)
    ListForUser(ctx context.Context, userID uint64) ([]model.ChatSummary, error)
    Messages(ctx context.Context, chatID, afterID uint64) ([]model.Message, error)
    AddMessage(ctx context.Context, chatID, senderID uint64, content string) (*model.Message, error)
    MarkRead(ctx context.Context, chatID, readerID uint64) error
}

// OfferStore is implemented by repository.OfferRepo.
type OfferStore interface {
    Create(ctx context.Context, o *model.Offer) error
    GetByID(ctx context.Context, id uint64) (*model.Offer, error)
    UpdateStatus(ctx context.Context, id uint64, status string) (bool, error)
    ListForUser(ctx context.Context, userID uint64) ([]model.Offer, error)
}

// FeedbackStore is implemented by repository.FeedbackRepo.
type FeedbackStore interface {
    AddComment(ctx context.Context, c *model.Comment) error
    Comments(ctx context.Context, listingID uint64) ([]model.Comment, error)
    AddRating(ctx context.Context, r *model.Rating) error
}

// Publisher emits domain events.  *queue.Publisher implements it.
type Publisher interface {
    Publish(ctx context.Context, ev queue.Event) error
}

// emit publishes ev when a publisher is configured.  The publisher logs its
// own failures; they never reach the caller.
func emit(ctx context.Context, pub Publisher, ev queue.Event) {
    if pub == nil {
        return
    }
    _ = pub.Publish(ctx, ev)
}

// Clock returns the current time.  Services default to UTC wall time;
// tests substitute a fixed clock.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
