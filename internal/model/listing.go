package model

import "time"

// Listing statuses.  New listings start pending; moderation moves them to
// active or rejected and the expiry sweep archives them.  Nothing leaves
// archived.
const (
    ListingPending  = "pending"
    ListingActive   = "active"
    ListingRejected = "rejected"
    ListingArchived = "archived"
)

// Currencies accepted for prices and offers.
const (
    CurrencyPYG = "PYG"
    CurrencyUSD = "USD"
)

// Sort orders accepted by the listing search.
const (
    SortNewest    = "newest"
    SortPriceAsc  = "price_asc"
    SortPriceDesc = "price_desc"
    SortAZ        = "az"
)

// Listing is a land-plot sale advertisement as stored in the `listings`
// table.  Images and User are filled by the access layer for detail and
// search views; they are not columns.
type Listing struct {
    ID                uint64   `json:"id" db:"id"`
    UserID            uint64   `json:"userId" db:"user_id"`
    Title             string   `json:"title" db:"title"`
    Description       string   `json:"description" db:"description"`
    Currency          string   `json:"currency" db:"currency"`
    Price             float64  `json:"price" db:"price"`
    Department        string   `json:"department" db:"department"`
    City              string   `json:"city" db:"city"`
    Zone              string   `json:"zone" db:"zone"`
    Lat               *float64 `json:"lat" db:"lat"`
    Lng               *float64 `json:"lng" db:"lng"`
    GoogleMapsLink    *string  `json:"googleMapsLink" db:"google_maps_link"`
    LandSize          float64  `json:"landSize" db:"land_size"`
    Dimensions        string   `json:"dimensions" db:"dimensions"`
    OwnerName         string   `json:"ownerName" db:"owner_name"`
    OwnerType         string   `json:"ownerType" db:"owner_type"`
    TitleStatus       string   `json:"titleStatus" db:"title_status"`
    Phone             string   `json:"phone" db:"phone"`
    Email             *string  `json:"email" db:"email"`
    PaymentCondition  string   `json:"paymentCondition" db:"payment_condition"`
    DownPayment       *float64 `json:"downPayment" db:"down_payment"`
    BarterDescription *string  `json:"barterDescription" db:"barter_description"`
    Status            string   `json:"status" db:"status"`
    Featured          bool     `json:"featured" db:"featured"`
    RejectionReason   *string  `json:"rejectionReason" db:"rejection_reason"`
    Slug              *string  `json:"slug" db:"slug"`
    CreatedAt         time.Time `json:"createdAt" db:"created_at"`
    UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`

    Images []ListingImage `json:"images" db:"-"`
    User   *PublicUser    `json:"user,omitempty" db:"-"`
}

// ListingImage is a photo or a scan of the title document.
type ListingImage struct {
    ID              uint64 `json:"id" db:"id"`
    ListingID       uint64 `json:"listingId" db:"listing_id"`
    URL             string `json:"url" db:"url"`
    IsTitleDocument bool   `json:"isTitleDocument" db:"is_title_document"`
}

// ListingFilter carries the search parameters of GET /api/listings after
// visibility rules have been applied.  Zero values mean "no filter".
type ListingFilter struct {
    Search           string
    Department       string
    City             string
    Zone             string
    MinPrice         *float64
    MaxPrice         *float64
    MinSize          *float64
    MaxSize          *float64
    Currency         string
    OwnerType        string
    OwnerName        string
    TitleStatus      string
    PaymentCondition string
    MinRating        *float64
    Status           string
    UserID           uint64
    SortBy           string
    Limit            int
    Page             int
}
