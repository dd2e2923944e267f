package service

import (
    "testing"

    "github.com/iliyamo/lotty-marketplace/internal/model"
)

func TestFeedbackFollowsVisibility(t *testing.T) {
    f := newFixture()
    ctx := ctxT(t)
    svc := NewFeedbackService(&memFeedback{}, f.listings)
    active := f.putListing(alice, model.ListingActive)
    pending := f.putListing(alice, model.ListingPending)

    c, err := svc.AddComment(ctx, bob, active, " Buen precio ")
    if err != nil || c.Content != "Buen precio" || c.Author != "Bob" {
        t.Fatalf("comment: %v %+v", err, c)
    }
    _, err = svc.AddComment(ctx, bob, pending, "hola")
    wantErr(t, err, ErrNotFound)
    if _, err := svc.AddComment(ctx, alice, pending, "nota"); err != nil {
        t.Fatalf("owner comment on pending listing: %v", err)
    }
    _, err = svc.AddComment(ctx, bob, active, "")
    wantField(t, err, "content")

    list, err := svc.Comments(ctx, nil, active)
    if err != nil || len(list) != 1 {
        t.Fatalf("comments: %v %+v", err, list)
    }
    _, err = svc.Comments(ctx, nil, pending)
    wantErr(t, err, ErrNotFound)

    if _, err := svc.Rate(ctx, bob, active, 5); err != nil {
        t.Fatalf("rate: %v", err)
    }
    _, err = svc.Rate(ctx, bob, active, 6)
    wantField(t, err, "rating")
    _, err = svc.Rate(ctx, alice, active, 5)
    wantField(t, err, "rating")
}

func TestAdminStats(t *testing.T) {
    f := newFixture()
    ctx := ctxT(t)
    users := &memUsers{users: []model.User{*alice, *bob, *root}}
    svc := NewAdminService(users, f.listings, f.subs)
    f.givePlan(t, alice, 30)
    f.givePlan(t, alice, 60)
    f.givePlan(t, bob, 30)
    f.putListing(alice, model.ListingPending)
    f.putListing(alice, model.ListingPending)
    f.putListing(bob, model.ListingActive)

    st, err := svc.Stats(ctx)
    if err != nil {
        t.Fatalf("stats: %v", err)
    }
    want := model.Stats{TotalUsers: 3, TotalListings: 3, ActiveSubscriptions: 2, PendingVerifications: 2}
    if *st != want {
        t.Fatalf("stats = %+v, want %+v", *st, want)
    }
    list, _ := svc.Users(ctx)
    if len(list) != 3 {
        t.Fatalf("users = %d", len(list))
    }
}
