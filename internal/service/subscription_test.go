package service

import (
    "context"
    "testing"
    "time"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/queue"
)

func TestAssignPlanKeepsOneActiveSubscription(t *testing.T) {
    f := newFixture()
    for i := 0; i < 4; i++ {
        f.now = t0.Add(time.Duration(i) * time.Hour)
        f.givePlan(t, alice, 30)
        if n := f.subs.activeFor(alice.ID); n != 1 {
            t.Fatalf("after assignment %d: %d active subscriptions", i+1, n)
        }
    }
    f.givePlan(t, bob, 7)
    if n := f.subs.activeFor(alice.ID); n != 1 {
        t.Fatalf("other user's plan changed alice's: %d active", n)
    }
}

func TestAssignPlanValidatesInput(t *testing.T) {
    f := newFixture()
    ctx := ctxT(t)
    _, err := f.subSvc.AssignPlan(ctx, alice.ID, PlanInput{PlanType: " ", DurationDays: 30})
    wantField(t, err, "planType")
    _, err = f.subSvc.AssignPlan(ctx, alice.ID, PlanInput{PlanType: "monthly", DurationDays: 0})
    wantField(t, err, "durationDays")
    _, err = f.subSvc.AssignPlan(ctx, alice.ID, PlanInput{PlanType: "monthly", DurationDays: 30, MaxListings: -2})
    wantField(t, err, "maxListings")

    f.subs.users = map[uint64]bool{alice.ID: true}
    _, err = f.subSvc.AssignPlan(ctx, 404, PlanInput{PlanType: "monthly", DurationDays: 30})
    wantErr(t, err, ErrNotFound)
}

func TestAssignPlanSetsDates(t *testing.T) {
    f := newFixture()
    sub := f.givePlan(t, alice, 30)
    if !sub.StartDate.Equal(t0) || !sub.EndDate.Equal(t0.AddDate(0, 0, 30)) {
        t.Fatalf("dates = %s .. %s", sub.StartDate, sub.EndDate)
    }
    if sub.Status != model.SubscriptionActive || sub.MaxListings != model.UnlimitedListings {
        t.Fatalf("unexpected subscription %+v", sub)
    }
    if got := f.pub.types(); len(got) != 1 || got[0] != queue.SubscriptionAssigned {
        t.Fatalf("events = %v", got)
    }
}

func TestCheckActiveSubscription(t *testing.T) {
    f := newFixture()
    ctx := ctxT(t)

    ok, err := f.subSvc.CheckActiveSubscription(ctx, alice.ID)
    if err != nil || ok {
        t.Fatalf("no subscription: ok=%v err=%v", ok, err)
    }
    f.givePlan(t, alice, 30)
    if ok, _ := f.subSvc.CheckActiveSubscription(ctx, alice.ID); !ok {
        t.Fatal("fresh plan should be active")
    }
    // the end date itself no longer counts
    f.now = t0.AddDate(0, 0, 30)
    if ok, _ := f.subSvc.CheckActiveSubscription(ctx, alice.ID); ok {
        t.Fatal("plan ending now should be inactive")
    }
}

func TestExpiredPlanInactiveBeforeSweepThenArchived(t *testing.T) {
    f := newFixture()
    ctx := ctxT(t)
    sub := f.givePlan(t, alice, 30)
    f.givePlan(t, bob, 90)
    pending := f.putListing(alice, model.ListingPending)
    active := f.putListing(alice, model.ListingActive)
    rejected := f.putListing(alice, model.ListingRejected)
    bobs := f.putListing(bob, model.ListingActive)

    f.now = t0.AddDate(0, 0, 31)
    ok, err := f.subSvc.CheckActiveSubscription(ctx, alice.ID)
    if err != nil || ok {
        t.Fatalf("lapsed plan reported active (err=%v)", err)
    }
    cur, active2, _ := f.subSvc.Current(ctx, alice.ID)
    if cur.Status != model.SubscriptionActive || active2 {
        t.Fatalf("before sweep: status=%s effective=%v", cur.Status, active2)
    }

    res, err := f.sweeper.Sweep(ctx)
    if err != nil {
        t.Fatalf("sweep: %v", err)
    }
    if res.Expired != 1 || res.Archived != 3 || res.Failed != 0 {
        t.Fatalf("sweep result %+v", res)
    }
    cur, _, _ = f.subSvc.Current(ctx, alice.ID)
    if cur.ID != sub.ID || cur.Status != model.SubscriptionExpired {
        t.Fatalf("after sweep: %+v", cur)
    }
    for _, id := range []uint64{pending, active, rejected} {
        if st := f.listings.status(id); st != model.ListingArchived {
            t.Fatalf("listing %d status %s, want archived", id, st)
        }
    }
    if st := f.listings.status(bobs); st != model.ListingActive {
        t.Fatalf("bob's listing touched: %s", st)
    }

    res, err = f.sweeper.Sweep(ctx)
    if err != nil || res.Expired != 0 {
        t.Fatalf("second sweep: %+v %v", res, err)
    }
}

func TestSweepContinuesAfterFailure(t *testing.T) {
    f := newFixture()
    f.givePlan(t, alice, 1)
    f.givePlan(t, bob, 1)
    f.putListing(bob, model.ListingActive)
    f.subs.failFor = alice.ID
    f.now = t0.AddDate(0, 0, 2)

    res, err := f.sweeper.Sweep(ctxT(t))
    if err != nil {
        t.Fatalf("sweep: %v", err)
    }
    if res.Failed != 1 || res.Expired != 1 || res.Archived != 1 {
        t.Fatalf("sweep result %+v", res)
    }
}

func TestSweepLeavesRenewedUserAlone(t *testing.T) {
    f := newFixture()
    f.givePlan(t, alice, 1)
    f.now = t0.AddDate(0, 0, 2)
    f.givePlan(t, alice, 30)
    id := f.putListing(alice, model.ListingActive)

    res, err := f.sweeper.Sweep(ctxT(t))
    if err != nil || res.Expired != 0 {
        t.Fatalf("sweep: %+v %v", res, err)
    }
    if st := f.listings.status(id); st != model.ListingActive {
        t.Fatalf("listing archived despite renewal: %s", st)
    }
}

func TestShorterReplacementPlanGovernsAccess(t *testing.T) {
    f := newFixture()
    ctx := ctxT(t)
    f.givePlan(t, alice, 90)
    short := f.givePlan(t, alice, 30)

    ok, err := f.subSvc.CheckActiveSubscription(ctx, alice.ID)
    if err != nil || !ok {
        t.Fatalf("replacement plan not active: ok=%v err=%v", ok, err)
    }
    cur, _, _ := f.subSvc.Current(ctx, alice.ID)
    if cur.ID != short.ID {
        t.Fatalf("current subscription %d, want %d", cur.ID, short.ID)
    }
    l, err := f.listingSvc.CreateListing(ctx, alice, validInput())
    if err != nil {
        t.Fatalf("create under replacement plan: %v", err)
    }

    f.now = t0.AddDate(0, 0, 31)
    if ok, _ := f.subSvc.CheckActiveSubscription(ctx, alice.ID); ok {
        t.Fatal("replacement plan still active after its end date")
    }
    res, err := f.sweeper.Sweep(ctx)
    if err != nil || res.Expired != 1 || res.Archived != 1 {
        t.Fatalf("sweep: %+v %v", res, err)
    }
    if st := f.listings.status(l.ID); st != model.ListingArchived {
        t.Fatalf("listing status %s, want archived", st)
    }
    if n := f.subs.activeFor(alice.ID); n != 0 {
        t.Fatalf("%d active subscriptions left after sweep", n)
    }
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
    f := newFixture()
    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        f.sweeper.Run(ctx)
        close(done)
    }()
    cancel()
    select {
    case <-done:
    case <-time.After(2 * time.Second):
        t.Fatal("Run did not return after cancel")
    }
}

type countPurger struct{ cutoff time.Time }

func (p *countPurger) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
    p.cutoff = cutoff
    return 3, nil
}

func TestSweepPurgesSessions(t *testing.T) {
    f := newFixture()
    p := &countPurger{}
    f.sweeper.PurgeSessions(p)
    res, err := f.sweeper.Sweep(ctxT(t))
    if err != nil || res.PurgedSessions != 3 {
        t.Fatalf("sweep: %+v %v", res, err)
    }
    if !p.cutoff.Equal(t0.Add(-24 * time.Hour)) {
        t.Fatalf("cutoff = %s", p.cutoff)
    }
}
