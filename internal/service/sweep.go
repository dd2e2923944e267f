package service

import (
    "context"
    "log"
    "sync"
    "time"

    "github.com/iliyamo/lotty-marketplace/internal/queue"
)

// SweepResult summarises one expiry sweep.
type SweepResult struct {
    Expired        int   `json:"expired"`
    Archived       int64 `json:"archived"`
    Failed         int   `json:"failed"`
    PurgedSessions int64 `json:"purgedSessions"`
}

// SessionPurger deletes dead sessions.  repository.SessionRepo implements
// it.
type SessionPurger interface {
    PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper expires lapsed subscriptions and archives their owners'
// listings.  Run drives it on a fixed interval; Sweep can also be called on
// demand.  Sweeps never overlap.
type Sweeper struct {
    subs     SubscriptionStore
    events   Publisher
    sessions SessionPurger
    interval time.Duration
    now      Clock
    mu       sync.Mutex
}

func NewSweeper(subs SubscriptionStore, events Publisher, interval time.Duration) *Sweeper {
    if subs == nil {
        panic("nil subscription store")
    }
    if interval <= 0 {
        interval = 10 * time.Minute
    }
    return &Sweeper{subs: subs, events: events, interval: interval, now: utcNow}
}

// PurgeSessions makes every sweep also delete sessions that expired or were
// revoked more than a day ago.
func (s *Sweeper) PurgeSessions(p SessionPurger) *Sweeper {
    s.sessions = p
    return s
}

// Sweep finds every subscription still marked active that has ended, expires it and archives all of the user's listings, one
// user per transaction.  A failure for one user is logged and the sweep
// moves on; only failing to list the lapsed subscriptions is returned.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    var res SweepResult
    now := s.now()
    lapsed, err := s.subs.ListLapsed(ctx, now)
    if err != nil {
        return res, err
    }
    for _, sub := range lapsed {
        if ctx.Err() != nil {
            return res, ctx.Err()
        }
        expired, archived, err := s.subs.Lapse(ctx, sub.ID, sub.UserID, now)
        if err != nil {
            res.Failed++
            log.Printf("sweep: user %d subscription %d: %v", sub.UserID, sub.ID, err)
            continue
        }
        if !expired {
            continue
        }
        res.Expired++
        res.Archived += archived
        log.Printf("sweep: subscription %d of user %d expired, %d listings archived", sub.ID, sub.UserID, archived)
        emit(ctx, s.events, queue.Event{Type: queue.SubscriptionExpired, UserID: sub.UserID, SubscriptionID: sub.ID})
        if archived > 0 {
            emit(ctx, s.events, queue.Event{Type: queue.ListingArchived, UserID: sub.UserID, Count: archived})
        }
    }
    if s.sessions != nil {
        n, err := s.sessions.PurgeExpired(ctx, now.Add(-24*time.Hour))
        if err != nil {
            log.Printf("sweep: purge sessions: %v", err)
        }
        res.PurgedSessions = n
    }
    return res, nil
}

// Run sweeps once immediately and then every interval until ctx is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) {
    log.Printf("sweep: running every %s", s.interval)
    t := time.NewTicker(s.interval)
    defer t.Stop()
    for {
        if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
            log.Printf("sweep: %v", err)
        }
        select {
        case <-ctx.Done():
            log.Printf("sweep: stopped")
            return
        case <-t.C:
        }
    }
}
