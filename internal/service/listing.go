package service

import (
    "context"
    "errors"
    "strings"
    "unicode"

    "github.com/google/uuid"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/queue"
    "github.com/iliyamo/lotty-marketplace/internal/repository"
)

// Price floors per currency.  A PYG price needs seven digits, a USD price
// four.
const (
    MinPricePYG = 1_000_000
    MinPriceUSD = 1_000
)

// ListingInput is the body of POST /api/listings.  Department, city and
// zone are checked after the price floor, so they carry no required tag.
type ListingInput struct {
    Title             string   `json:"title" validate:"required,max=200"`
    Description       string   `json:"description" validate:"required,max=5000"`
    Currency          string   `json:"currency" validate:"required,oneof=PYG USD"`
    Price             float64  `json:"price" validate:"gt=0"`
    Department        string   `json:"department" validate:"max=100"`
    City              string   `json:"city" validate:"max=100"`
    Zone              string   `json:"zone" validate:"max=100"`
    Lat               *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
    Lng               *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
    GoogleMapsLink    *string  `json:"googleMapsLink" validate:"omitempty,url"`
    LandSize          float64  `json:"landSize" validate:"gt=0"`
    Dimensions        string   `json:"dimensions" validate:"required,max=100"`
    OwnerName         string   `json:"ownerName" validate:"required,max=200"`
    OwnerType         string   `json:"ownerType" validate:"required,oneof=owner commission_agent other"`
    TitleStatus       string   `json:"titleStatus" validate:"required,oneof=has_title no_title"`
    Phone             string   `json:"phone" validate:"required,max=50"`
    Email             *string  `json:"email" validate:"omitempty,email"`
    PaymentCondition  string   `json:"paymentCondition" validate:"required,oneof=cash_only installments barter"`
    DownPayment       *float64 `json:"downPayment" validate:"omitempty,gte=0"`
    BarterDescription *string  `json:"barterDescription" validate:"omitempty,max=2000"`
    Featured          bool     `json:"featured"`
}

// normalize trims strings and turns blank optional strings into nil so
// that "" and a missing value mean the same thing.
func (in *ListingInput) normalize() {
    for _, s := range []*string{&in.Title, &in.Description, &in.Currency, &in.Department, &in.City,
        &in.Zone, &in.Dimensions, &in.OwnerName, &in.OwnerType, &in.TitleStatus, &in.Phone, &in.PaymentCondition} {
        *s = strings.TrimSpace(*s)
    }
    in.Currency = strings.ToUpper(in.Currency)
    in.GoogleMapsLink = blankToNil(in.GoogleMapsLink)
    in.Email = blankToNil(in.Email)
    in.BarterDescription = blankToNil(in.BarterDescription)
}

func blankToNil(s *string) *string {
    if s == nil {
        return nil
    }
    t := strings.TrimSpace(*s)
    if t == "" {
        return nil
    }
    return &t
}

// validateListing applies the listing rules in order; the first failure
// wins: struct schema, price floor, location, map link or coordinates.
func validateListing(in *ListingInput) error {
    in.normalize()
    if err := validateStruct(in); err != nil {
        return err
    }
    switch in.Currency {
    case model.CurrencyPYG:
        if in.Price < MinPricePYG {
            return invalid("price", "price in PYG must be at least 1.000.000")
        }
    case model.CurrencyUSD:
        if in.Price < MinPriceUSD {
            return invalid("price", "price in USD must be at least 1.000")
        }
    }
    switch {
    case in.Department == "":
        return invalid("department", "department is required")
    case in.City == "":
        return invalid("city", "city is required")
    case in.Zone == "":
        return invalid("zone", "zone is required")
    }
    if in.GoogleMapsLink == nil && (in.Lat == nil || in.Lng == nil) {
        return invalid("googleMapsLink", "a Google Maps link or both lat and lng are required")
    }
    return nil
}

// ListingPatch is the body of PATCH /api/listings/:id.  Nil fields are left
// unchanged.
type ListingPatch struct {
    Title             *string  `json:"title"`
    Description       *string  `json:"description"`
    Currency          *string  `json:"currency"`
    Price             *float64 `json:"price"`
    Department        *string  `json:"department"`
    City              *string  `json:"city"`
    Zone              *string  `json:"zone"`
    Lat               *float64 `json:"lat"`
    Lng               *float64 `json:"lng"`
    GoogleMapsLink    *string  `json:"googleMapsLink"`
    LandSize          *float64 `json:"landSize"`
    Dimensions        *string  `json:"dimensions"`
    OwnerName         *string  `json:"ownerName"`
    OwnerType         *string  `json:"ownerType"`
    TitleStatus       *string  `json:"titleStatus"`
    Phone             *string  `json:"phone"`
    Email             *string  `json:"email"`
    PaymentCondition  *string  `json:"paymentCondition"`
    DownPayment       *float64 `json:"downPayment"`
    BarterDescription *string  `json:"barterDescription"`
    Featured          *bool    `json:"featured"`
    Status            *string  `json:"status"`
}

func inputFrom(l *model.Listing) ListingInput {
    return ListingInput{
        Title: l.Title, Description: l.Description, Currency: l.Currency, Price: l.Price,
        Department: l.Department, City: l.City, Zone: l.Zone, Lat: l.Lat, Lng: l.Lng,
        GoogleMapsLink: l.GoogleMapsLink, LandSize: l.LandSize, Dimensions: l.Dimensions,
        OwnerName: l.OwnerName, OwnerType: l.OwnerType, TitleStatus: l.TitleStatus, Phone: l.Phone,
        Email: l.Email, PaymentCondition: l.PaymentCondition, DownPayment: l.DownPayment,
        BarterDescription: l.BarterDescription, Featured: l.Featured,
    }
}

func (p ListingPatch) applyTo(in *ListingInput) {
    setStr := func(dst *string, v *string) {
        if v != nil {
            *dst = *v
        }
    }
    setF := func(dst *float64, v *float64) {
        if v != nil {
            *dst = *v
        }
    }
    setStr(&in.Title, p.Title)
    setStr(&in.Description, p.Description)
    setStr(&in.Currency, p.Currency)
    setF(&in.Price, p.Price)
    setStr(&in.Department, p.Department)
    setStr(&in.City, p.City)
    setStr(&in.Zone, p.Zone)
    setF(&in.LandSize, p.LandSize)
    setStr(&in.Dimensions, p.Dimensions)
    setStr(&in.OwnerName, p.OwnerName)
    setStr(&in.OwnerType, p.OwnerType)
    setStr(&in.TitleStatus, p.TitleStatus)
    setStr(&in.Phone, p.Phone)
    setStr(&in.PaymentCondition, p.PaymentCondition)
    if p.Lat != nil {
        in.Lat = p.Lat
    }
    if p.Lng != nil {
        in.Lng = p.Lng
    }
    if p.GoogleMapsLink != nil {
        in.GoogleMapsLink = p.GoogleMapsLink
    }
    if p.Email != nil {
        in.Email = p.Email
    }
    if p.DownPayment != nil {
        in.DownPayment = p.DownPayment
    }
    if p.BarterDescription != nil {
        in.BarterDescription = p.BarterDescription
    }
}

func applyInput(l *model.Listing, in ListingInput) {
    l.Title, l.Description, l.Currency, l.Price = in.Title, in.Description, in.Currency, in.Price
    l.Department, l.City, l.Zone = in.Department, in.City, in.Zone
    l.Lat, l.Lng, l.GoogleMapsLink = in.Lat, in.Lng, in.GoogleMapsLink
    l.LandSize, l.Dimensions = in.LandSize, in.Dimensions
    l.OwnerName, l.OwnerType, l.TitleStatus = in.OwnerName, in.OwnerType, in.TitleStatus
    l.Phone, l.Email = in.Phone, in.Email
    l.PaymentCondition, l.DownPayment, l.BarterDescription = in.PaymentCondition, in.DownPayment, in.BarterDescription
}

// ListingService applies the listing rules: the subscription gate,
// validation, ownership, moderation and visibility.
type ListingService struct {
    listings ListingStore
    subs     *SubscriptionService
    events   Publisher
}

func NewListingService(listings ListingStore, subs *SubscriptionService, events Publisher) *ListingService {
    if listings == nil || subs == nil {
        panic("nil dependency")
    }
    return &ListingService{listings: listings, subs: subs, events: events}
}

// canSee reports whether viewer may see non-active listings of ownerID.
func canSee(viewer *model.User, ownerID uint64) bool {
    return viewer != nil && (viewer.ID == ownerID || viewer.IsAdmin())
}

// slugAttempts is how many fresh slugs CreateListing tries before giving up.
const slugAttempts = 3

// CreateListing publishes a new listing for caller.  The caller needs an
// effectively active subscription unless they are an admin.  New listings
// always start pending.
func (s *ListingService) CreateListing(ctx context.Context, caller *model.User, in ListingInput) (*model.Listing, error) {
    if caller == nil {
        return nil, ErrUnauthorized
    }
    if !caller.IsAdmin() {
        ok, err := s.subs.CheckActiveSubscription(ctx, caller.ID)
        if err != nil {
            return nil, err
        }
        if !ok {
            return nil, ErrForbidden
        }
    }
    if err := validateListing(&in); err != nil {
        return nil, err
    }
    l := &model.Listing{UserID: caller.ID, Status: model.ListingPending}
    applyInput(l, in)
    l.Featured = caller.IsAdmin() && in.Featured
    var err error
    for attempt := 0; attempt < slugAttempts; attempt++ {
        slug := makeSlug(in.Title)
        l.Slug = &slug
        if err = s.listings.Create(ctx, l); !errors.Is(err, repository.ErrSlugExists) {
            break
        }
    }
    if err != nil {
        return nil, err
    }
    emit(ctx, s.events, queue.Event{Type: queue.ListingCreated, UserID: caller.ID, ListingID: l.ID, Status: l.Status})
    return l, nil
}

// UpdateListing applies a partial update.  Only the owner or an admin may
// update; the merged listing must pass the same rules as a new one.  Status
// can only be changed by an admin, and only to archived.
func (s *ListingService) UpdateListing(ctx context.Context, caller *model.User, id uint64, p ListingPatch) (*model.Listing, error) {
    if caller == nil {
        return nil, ErrUnauthorized
    }
    l, err := s.listings.GetByID(ctx, id)
    if errors.Is(err, repository.ErrListingNotFound) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if !canSee(caller, l.UserID) {
        return nil, ErrForbidden
    }

    archiving := false
    if p.Status != nil && *p.Status != l.Status {
        if !caller.IsAdmin() {
            return nil, ErrForbidden
        }
        if *p.Status != model.ListingArchived {
            return nil, invalid("status", "status can only be changed to archived; use moderation instead")
        }
        archiving = true
    }

    in := inputFrom(l)
    p.applyTo(&in)
    if err := validateListing(&in); err != nil {
        return nil, err
    }
    applyInput(l, in)
    if p.Featured != nil && caller.IsAdmin() {
        l.Featured = *p.Featured
    }

    // status is never part of the field update; a sweep or moderation
    // landing between the read above and this write keeps its result
    if err := s.listings.Update(ctx, l); err != nil {
        if errors.Is(err, repository.ErrListingNotFound) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    if archiving {
        if err := s.listings.Archive(ctx, id); err != nil {
            if errors.Is(err, repository.ErrListingNotFound) {
                return nil, ErrNotFound
            }
            return nil, err
        }
        emit(ctx, s.events, queue.Event{Type: queue.ListingArchived, UserID: caller.ID, ListingID: l.ID, Count: 1})
    }
    return s.detail(ctx, id)
}

// Moderation actions.
const (
    ActionApprove = "approve"
    ActionReject  = "reject"
)

// ModerateListing approves or rejects a listing.  Approval clears any
// previous rejection reason; rejection stores the reason, or NULL when it
// is blank.  Archived listings cannot be moderated.
func (s *ListingService) ModerateListing(ctx context.Context, caller *model.User, id uint64, action, reason string) (*model.Listing, error) {
    if !caller.IsAdmin() {
        return nil, ErrForbidden
    }
    var status string
    var why *string
    switch strings.ToLower(strings.TrimSpace(action)) {
    case ActionApprove:
        status = model.ListingActive
    case ActionReject:
        status = model.ListingRejected
        why = blankToNil(&reason)
    default:
        return nil, invalid("action", "action must be approve or reject")
    }
    l, err := s.listings.GetByID(ctx, id)
    if errors.Is(err, repository.ErrListingNotFound) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if l.Status == model.ListingArchived {
        return nil, invalid("status", "archived listings cannot be moderated")
    }
    if err := s.listings.SetModeration(ctx, id, status, why); err != nil {
        switch {
        case errors.Is(err, repository.ErrListingNotFound):
            return nil, ErrNotFound
        case errors.Is(err, repository.ErrListingArchived):
            return nil, invalid("status", "archived listings cannot be moderated")
        }
        return nil, err
    }
    emit(ctx, s.events, queue.Event{Type: queue.ListingModerated, UserID: l.UserID, ListingID: id, Status: status})
    return s.detail(ctx, id)
}

// GetListing returns a listing with its images and owner.  Archived
// listings exist only for their owner and admins; everyone else gets
// ErrNotFound.
func (s *ListingService) GetListing(ctx context.Context, viewer *model.User, id uint64) (*model.Listing, error) {
    l, err := s.detail(ctx, id)
    if err != nil {
        return nil, err
    }
    if l.Status == model.ListingArchived && !canSee(viewer, l.UserID) {
        return nil, ErrNotFound
    }
    return l, nil
}

// ListListings searches listings.  Without a userId scope, or when the
// viewer is neither that user nor an admin, only active listings are
// returned whatever status was asked for.
func (s *ListingService) ListListings(ctx context.Context, viewer *model.User, f model.ListingFilter) ([]model.Listing, error) {
    if f.UserID == 0 || !canSee(viewer, f.UserID) {
        f.Status = model.ListingActive
    }
    if err := checkSort(f.SortBy); err != nil {
        return nil, err
    }
    return s.listings.Search(ctx, f)
}

// ModerationQueue lists listings in the given status for admins, pending by
// default.
func (s *ListingService) ModerationQueue(ctx context.Context, caller *model.User, status string, page int) ([]model.Listing, error) {
    if !caller.IsAdmin() {
        return nil, ErrForbidden
    }
    if status == "" {
        status = model.ListingPending
    }
    switch status {
    case model.ListingPending, model.ListingActive, model.ListingRejected, model.ListingArchived:
    default:
        return nil, invalid("status", "unknown listing status %q", status)
    }
    return s.listings.Search(ctx, model.ListingFilter{Status: status, SortBy: model.SortNewest, Page: page})
}

// AuthorizeImageUpload loads the listing an image is about to be attached
// to and checks that caller owns it.
func (s *ListingService) AuthorizeImageUpload(ctx context.Context, caller *model.User, id uint64) (*model.Listing, error) {
    if caller == nil {
        return nil, ErrUnauthorized
    }
    l, err := s.listings.GetByID(ctx, id)
    if errors.Is(err, repository.ErrListingNotFound) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if l.UserID != caller.ID {
        return nil, ErrForbidden
    }
    return l, nil
}

// AddImage records an uploaded image for a listing.
func (s *ListingService) AddImage(ctx context.Context, listingID uint64, url string, isTitle bool) (*model.ListingImage, error) {
    return s.listings.AddImage(ctx, listingID, url, isTitle)
}

func (s *ListingService) detail(ctx context.Context, id uint64) (*model.Listing, error) {
    l, err := s.listings.GetDetail(ctx, id)
    if errors.Is(err, repository.ErrListingNotFound) {
        return nil, ErrNotFound
    }
    return l, err
}

func checkSort(sortBy string) error {
    switch sortBy {
    case "", model.SortNewest, model.SortPriceAsc, model.SortPriceDesc, model.SortAZ:
        return nil
    }
    return invalid("sortBy", "sortBy must be one of newest, price_asc, price_desc, az")
}

// makeSlug builds a URL slug from the title plus a short random suffix.
// The suffix makes collisions rare; the unique index and the retry in
// CreateListing handle the rest.
func makeSlug(title string) string {
    var b strings.Builder
    dash := false
    for _, r := range strings.ToLower(title) {
        switch {
        case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
            b.WriteRune(r)
            dash = false
        case !dash && b.Len() > 0:
            b.WriteByte('-')
            dash = true
        }
        if b.Len() >= 60 {
            break
        }
    }
    base := strings.TrimRight(b.String(), "-")
    suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
    if base == "" {
        return suffix
    }
    return base + "-" + suffix
}
