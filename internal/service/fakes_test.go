package service

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/queue"
    "github.com/iliyamo/lotty-marketplace/internal/repository"
)

// In-memory stores mirroring the MySQL repositories closely enough for the
// business rules to be exercised without a database.

type memListings struct {
    mu     sync.Mutex
    nextID uint64
    rows   map[uint64]*model.Listing
    images map[uint64][]model.ListingImage
    lastF  model.ListingFilter
    // beforeWrite runs at the start of Update and SetModeration, standing
    // in for a concurrent writer between a service's read and its write.
    beforeWrite func()
    // slugClashes makes the next Create calls fail as if the slug were taken
    slugClashes int
}

func newMemListings() *memListings {
    return &memListings{rows: map[uint64]*model.Listing{}, images: map[uint64][]model.ListingImage{}}
}

func (m *memListings) put(l model.Listing) uint64 {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.nextID++
    l.ID = m.nextID
    m.rows[l.ID] = &l
    return l.ID
}

func (m *memListings) status(id uint64) string {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.rows[id].Status
}

func (m *memListings) Create(_ context.Context, l *model.Listing) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.slugClashes > 0 {
        m.slugClashes--
        return repository.ErrSlugExists
    }
    m.nextID++
    l.ID = m.nextID
    l.Images = []model.ListingImage{}
    cp := *l
    m.rows[l.ID] = &cp
    return nil
}

func (m *memListings) GetByID(_ context.Context, id uint64) (*model.Listing, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    l, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrListingNotFound
    }
    cp := *l
    return &cp, nil
}

func (m *memListings) GetDetail(ctx context.Context, id uint64) (*model.Listing, error) {
    l, err := m.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    l.Images = append([]model.ListingImage{}, m.images[id]...)
    l.User = &model.PublicUser{ID: l.UserID}
    return l, nil
}

func (m *memListings) Update(_ context.Context, l *model.Listing) error {
    if m.beforeWrite != nil {
        m.beforeWrite()
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    cur, ok := m.rows[l.ID]
    if !ok {
        return repository.ErrListingNotFound
    }
    cp := *l
    cp.Status, cp.RejectionReason, cp.Slug = cur.Status, cur.RejectionReason, cur.Slug
    m.rows[l.ID] = &cp
    return nil
}

func (m *memListings) Archive(_ context.Context, id uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    l, ok := m.rows[id]
    if !ok {
        return repository.ErrListingNotFound
    }
    l.Status = model.ListingArchived
    return nil
}

func (m *memListings) SetModeration(_ context.Context, id uint64, status string, reason *string) error {
    if m.beforeWrite != nil {
        m.beforeWrite()
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    l, ok := m.rows[id]
    if !ok {
        return repository.ErrListingNotFound
    }
    if l.Status == model.ListingArchived {
        return repository.ErrListingArchived
    }
    l.Status = status
    l.RejectionReason = reason
    return nil
}

func (m *memListings) AddImage(_ context.Context, listingID uint64, url string, isTitle bool) (*model.ListingImage, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    img := model.ListingImage{ID: uint64(len(m.images[listingID]) + 1), ListingID: listingID, URL: url, IsTitleDocument: isTitle}
    m.images[listingID] = append(m.images[listingID], img)
    return &img, nil
}

func (m *memListings) Search(_ context.Context, f model.ListingFilter) ([]model.Listing, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.lastF = f
    out := []model.Listing{}
    for _, l := range m.rows {
        if f.Status != "" && l.Status != f.Status {
            continue
        }
        if f.UserID != 0 && l.UserID != f.UserID {
            continue
        }
        out = append(out, *l)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (m *memListings) Count(context.Context) (int64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return int64(len(m.rows)), nil
}

func (m *memListings) CountByStatus(_ context.Context, status string) (int64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var n int64
    for _, l := range m.rows {
        if l.Status == status {
            n++
        }
    }
    return n, nil
}

func (m *memListings) archiveAll(userID uint64) int64 {
    m.mu.Lock()
    defer m.mu.Unlock()
    var n int64
    for _, l := range m.rows {
        if l.UserID == userID && l.Status != model.ListingArchived {
            l.Status = model.ListingArchived
            n++
        }
    }
    return n
}

type memSubs struct {
    mu       sync.Mutex
    rows     []*model.Subscription
    users    map[uint64]bool
    listings *memListings
    failFor  uint64
}

func (m *memSubs) latestLocked(userID uint64) *model.Subscription {
    var best *model.Subscription
    for _, s := range m.rows {
        if s.UserID != userID {
            continue
        }
        if best == nil || subRanksAbove(s, best) {
            best = s
        }
    }
    return best
}

// subRanksAbove orders subscriptions the way SubscriptionRepo.Latest does:
// active first, then latest end date, then highest id.
func subRanksAbove(a, b *model.Subscription) bool {
    aActive, bActive := a.Status == model.SubscriptionActive, b.Status == model.SubscriptionActive
    if aActive != bActive {
        return aActive
    }
    if !a.EndDate.Equal(b.EndDate) {
        return a.EndDate.After(b.EndDate)
    }
    return a.ID > b.ID
}

func (m *memSubs) Latest(_ context.Context, userID uint64) (*model.Subscription, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    s := m.latestLocked(userID)
    if s == nil {
        return nil, repository.ErrSubscriptionNotFound
    }
    cp := *s
    return &cp, nil
}

func (m *memSubs) Assign(_ context.Context, s *model.Subscription) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.users != nil && !m.users[s.UserID] {
        return repository.ErrUserNotFound
    }
    for _, old := range m.rows {
        if old.UserID == s.UserID && old.Status == model.SubscriptionActive {
            old.Status = model.SubscriptionExpired
        }
    }
    s.ID = uint64(len(m.rows) + 1)
    s.Status = model.SubscriptionActive
    cp := *s
    m.rows = append(m.rows, &cp)
    return nil
}

func (m *memSubs) ListLapsed(_ context.Context, now time.Time) ([]model.Subscription, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.Subscription
    for _, s := range m.rows {
        if s.Status == model.SubscriptionActive && !s.EndDate.After(now) {
            out = append(out, *s)
        }
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
    return out, nil
}

func (m *memSubs) Lapse(_ context.Context, subID, userID uint64, _ time.Time) (bool, int64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if userID == m.failFor {
        return false, 0, context.DeadlineExceeded
    }
    for _, s := range m.rows {
        if s.ID == subID {
            if s.Status != model.SubscriptionActive {
                return false, 0, nil
            }
            s.Status = model.SubscriptionExpired
        }
    }
    var n int64
    if m.listings != nil {
        n = m.listings.archiveAll(userID)
    }
    return true, n, nil
}

func (m *memSubs) CountActive(context.Context) (int64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var n int64
    for _, s := range m.rows {
        if s.Status == model.SubscriptionActive {
            n++
        }
    }
    return n, nil
}

func (m *memSubs) activeFor(userID uint64) int {
    m.mu.Lock()
    defer m.mu.Unlock()
    n := 0
    for _, s := range m.rows {
        if s.UserID == userID && s.Status == model.SubscriptionActive {
            n++
        }
    }
    return n
}

type memChats struct {
    mu       sync.Mutex
    chats    []*model.Chat
    messages []*model.Message
}

func (m *memChats) FindOrCreate(_ context.Context, listingID, buyerID, sellerID uint64) (*model.Chat, bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, c := range m.chats {
        if c.ListingID == listingID && c.BuyerID == buyerID && c.SellerID == sellerID {
            cp := *c
            return &cp, false, nil
        }
    }
    c := &model.Chat{ID: uint64(len(m.chats) + 1), ListingID: listingID, BuyerID: buyerID, SellerID: sellerID}
    m.chats = append(m.chats, c)
    cp := *c
    return &cp, true, nil
}

func (m *memChats) GetByID(_ context.Context, id uint64) (*model.Chat, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, c := range m.chats {
        if c.ID == id {
            cp := *c
            return &cp, nil
        }
    }
    return nil, repository.ErrChatNotFound
}

func (m *memChats) ListForUser(_ context.Context, userID uint64) ([]model.ChatSummary, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.ChatSummary
    for _, c := range m.chats {
        if c.HasParticipant(userID) {
            out = append(out, model.ChatSummary{Chat: *c})
        }
    }
    return out, nil
}

func (m *memChats) Messages(_ context.Context, chatID, afterID uint64) ([]model.Message, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []model.Message{}
    for _, msg := range m.messages {
        if msg.ChatID == chatID && msg.ID > afterID {
            out = append(out, *msg)
        }
    }
    return out, nil
}

func (m *memChats) AddMessage(_ context.Context, chatID, senderID uint64, content string) (*model.Message, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    msg := &model.Message{ID: uint64(len(m.messages) + 1), ChatID: chatID, SenderID: senderID, Content: content}
    m.messages = append(m.messages, msg)
    cp := *msg
    return &cp, nil
}

func (m *memChats) MarkRead(_ context.Context, chatID, readerID uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, msg := range m.messages {
        if msg.ChatID == chatID && msg.SenderID != readerID {
            msg.Read = true
        }
    }
    return nil
}

type memOffers struct {
    mu   sync.Mutex
    rows []*model.Offer
}

func (m *memOffers) Create(_ context.Context, o *model.Offer) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    o.ID = uint64(len(m.rows) + 1)
    o.Status = model.OfferPending
    cp := *o
    m.rows = append(m.rows, &cp)
    return nil
}

func (m *memOffers) GetByID(_ context.Context, id uint64) (*model.Offer, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, o := range m.rows {
        if o.ID == id {
            cp := *o
            return &cp, nil
        }
    }
    return nil, repository.ErrOfferNotFound
}

func (m *memOffers) UpdateStatus(_ context.Context, id uint64, status string) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, o := range m.rows {
        if o.ID == id && o.Status == model.OfferPending {
            o.Status = status
            return true, nil
        }
    }
    return false, nil
}

func (m *memOffers) ListForUser(_ context.Context, userID uint64) ([]model.Offer, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []model.Offer{}
    for _, o := range m.rows {
        if o.BuyerID == userID {
            out = append(out, *o)
        }
    }
    return out, nil
}

type memFeedback struct {
    comments []model.Comment
    ratings  []model.Rating
}

func (m *memFeedback) AddComment(_ context.Context, c *model.Comment) error {
    c.ID = uint64(len(m.comments) + 1)
    m.comments = append(m.comments, *c)
    return nil
}

func (m *memFeedback) Comments(_ context.Context, listingID uint64) ([]model.Comment, error) {
    out := []model.Comment{}
    for _, c := range m.comments {
        if c.ListingID == listingID {
            out = append(out, c)
        }
    }
    return out, nil
}

func (m *memFeedback) AddRating(_ context.Context, r *model.Rating) error {
    r.ID = uint64(len(m.ratings) + 1)
    m.ratings = append(m.ratings, *r)
    return nil
}

type memUsers struct {
    users []model.User
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
    for _, u := range m.users {
        if u.ID == id {
            cp := u
            return &cp, nil
        }
    }
    return nil, repository.ErrUserNotFound
}

func (m *memUsers) Count(context.Context) (int64, error) { return int64(len(m.users)), nil }

func (m *memUsers) ListWithSubscriptions(context.Context) ([]model.UserWithSubscription, error) {
    out := make([]model.UserWithSubscription, 0, len(m.users))
    for _, u := range m.users {
        out = append(out, model.UserWithSubscription{User: u})
    }
    return out, nil
}

type recPublisher struct {
    mu     sync.Mutex
    events []queue.Event
}

func (p *recPublisher) Publish(_ context.Context, ev queue.Event) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return nil
}

func (p *recPublisher) types() []string {
    p.mu.Lock()
    defer p.mu.Unlock()
    out := make([]string, len(p.events))
    for i, ev := range p.events {
        out[i] = ev.Type
    }
    return out
}
