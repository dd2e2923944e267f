package service

import (
    "context"
    "errors"
    "strings"
    "unicode/utf8"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/repository"
)

// FeedbackService stores comments and ratings on listings.  Both follow the
// listing's visibility: what a viewer cannot see, they cannot comment on.
type FeedbackService struct {
    feedback FeedbackStore
    listings ListingStore
}

func NewFeedbackService(feedback FeedbackStore, listings ListingStore) *FeedbackService {
    if feedback == nil || listings == nil {
        panic("nil dependency")
    }
    return &FeedbackService{feedback: feedback, listings: listings}
}

func (s *FeedbackService) visibleListing(ctx context.Context, viewer *model.User, id uint64) (*model.Listing, error) {
    l, err := s.listings.GetByID(ctx, id)
    if errors.Is(err, repository.ErrListingNotFound) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if l.Status != model.ListingActive && !canSee(viewer, l.UserID) {
        return nil, ErrNotFound
    }
    return l, nil
}

// Comments lists the comments of a listing.
func (s *FeedbackService) Comments(ctx context.Context, viewer *model.User, listingID uint64) ([]model.Comment, error) {
    if _, err := s.visibleListing(ctx, viewer, listingID); err != nil {
        return nil, err
    }
    return s.feedback.Comments(ctx, listingID)
}

// AddComment stores a 1..1000 character comment by user.
func (s *FeedbackService) AddComment(ctx context.Context, user *model.User, listingID uint64, content string) (*model.Comment, error) {
    if user == nil {
        return nil, ErrUnauthorized
    }
    content = strings.TrimSpace(content)
    if content == "" || utf8.RuneCountInString(content) > 1000 {
        return nil, invalid("content", "comment must be between 1 and 1000 characters")
    }
    if _, err := s.visibleListing(ctx, user, listingID); err != nil {
        return nil, err
    }
    c := &model.Comment{ListingID: listingID, UserID: user.ID, Author: user.FullName, Content: content}
    if err := s.feedback.AddComment(ctx, c); err != nil {
        return nil, err
    }
    return c, nil
}

// Rate stores a 1..5 rating by user.  Owners cannot rate their own
// listings.
func (s *FeedbackService) Rate(ctx context.Context, user *model.User, listingID uint64, rating int) (*model.Rating, error) {
    if user == nil {
        return nil, ErrUnauthorized
    }
    if rating < 1 || rating > 5 {
        return nil, invalid("rating", "rating must be between 1 and 5")
    }
    l, err := s.visibleListing(ctx, user, listingID)
    if err != nil {
        return nil, err
    }
    if l.UserID == user.ID {
        return nil, invalid("rating", "you cannot rate your own listing")
    }
    r := &model.Rating{ListingID: listingID, UserID: user.ID, Rating: rating}
    if err := s.feedback.AddRating(ctx, r); err != nil {
        return nil, err
    }
    return r, nil
}
