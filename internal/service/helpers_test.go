package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/iliyamo/lotty-marketplace/internal/model"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var (
    alice = &model.User{ID: 1, Username: "alice@lotty.py", FullName: "Alice", Role: model.RoleUser}
    bob   = &model.User{ID: 2, Username: "bob@lotty.py", FullName: "Bob", Role: model.RoleUser}
    root  = &model.User{ID: 9, Username: "admin@lotty.py", FullName: "Admin", Role: model.RoleAdmin}
)

type fixture struct {
    now      time.Time
    subs     *memSubs
    listings *memListings
    chats    *memChats
    offers   *memOffers
    pub      *recPublisher

    subSvc     *SubscriptionService
    listingSvc *ListingService
    chatSvc    *ChatService
    offerSvc   *OfferService
    sweeper    *Sweeper
}

func newFixture() *fixture {
    f := &fixture{now: t0, listings: newMemListings(), chats: &memChats{}, offers: &memOffers{}, pub: &recPublisher{}}
    f.subs = &memSubs{listings: f.listings}
    clock := func() time.Time { return f.now }
    f.subSvc = NewSubscriptionService(f.subs, f.pub)
    f.subSvc.now = clock
    f.listingSvc = NewListingService(f.listings, f.subSvc, f.pub)
    f.chatSvc = NewChatService(f.chats, f.listings, f.pub, nil)
    f.offerSvc = NewOfferService(f.offers, f.listings, f.pub)
    f.sweeper = NewSweeper(f.subs, f.pub, time.Minute)
    f.sweeper.now = clock
    return f
}

func (f *fixture) givePlan(t *testing.T, u *model.User, days int) *model.Subscription {
    t.Helper()
    sub, err := f.subSvc.AssignPlan(ctxT(t), u.ID, PlanInput{PlanType: "monthly", DurationDays: days, MaxListings: model.UnlimitedListings})
    if err != nil {
        t.Fatalf("assign plan: %v", err)
    }
    return sub
}

func (f *fixture) putListing(owner *model.User, status string) uint64 {
    return f.listings.put(model.Listing{UserID: owner.ID, Title: "Lote", Currency: model.CurrencyUSD, Price: 5000, Status: status})
}

func validInput() ListingInput {
    link := "https://maps.google.com/?q=-27.33,-55.86"
    return ListingInput{
        Title:            "Terreno en Encarnación",
        Description:      "Hermoso terreno cerca de la costanera.",
        Currency:         model.CurrencyPYG,
        Price:            MinPricePYG,
        Department:       "Itapúa",
        City:             "Encarnación",
        Zone:             "Barrio San Pedro",
        GoogleMapsLink:   &link,
        LandSize:         360,
        Dimensions:       "12x30",
        OwnerName:        "Juan Perez",
        OwnerType:        "owner",
        TitleStatus:      "has_title",
        Phone:            "0971111111",
        PaymentCondition: "cash_only",
    }
}

func wantField(t *testing.T, err error, field string) {
    t.Helper()
    ve, ok := IsValidation(err)
    if !ok {
        t.Fatalf("want validation error on %q, got %v", field, err)
    }
    if ve.Field != field {
        t.Fatalf("want field %q, got %q (%s)", field, ve.Field, ve.Message)
    }
}

func wantErr(t *testing.T, err, target error) {
    t.Helper()
    if !errors.Is(err, target) {
        t.Fatalf("want %v, got %v", target, err)
    }
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string    { return &v }

func ctxT(t *testing.T) context.Context {
    t.Helper()
    ctx, cancel := context.WithCancel(context.Background())
    t.Cleanup(cancel)
    return ctx
}
