package handler

import (
    "io"
    "math"
    "net/http"
    "net/url"
    "os"
    "path/filepath"
    "strconv"
    "strings"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/service"
)

// maxListingPage bounds the page query parameter so the offset stays small.
const maxListingPage = 10000

// allowedImageTypes maps sniffed content types to file extensions.
var allowedImageTypes = map[string]string{
    "image/jpeg": ".jpg",
    "image/png":  ".png",
    "image/webp": ".webp",
}

// ListingHandler serves /api/listings.
type ListingHandler struct {
    Listings  *service.ListingService
    UploadDir string
    MaxUpload int64
}

func NewListingHandler(l *service.ListingService, uploadDir string, maxUpload int64) *ListingHandler {
    if l == nil {
        panic("nil listing service")
    }
    if maxUpload <= 0 {
        maxUpload = 5 * 1024 * 1024
    }
    return &ListingHandler{Listings: l, UploadDir: uploadDir, MaxUpload: maxUpload}
}

// List handles GET /api/listings.
func (h *ListingHandler) List(c echo.Context) error {
    f, err := parseListingFilter(c.QueryParams())
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    out, err := h.Listings.ListListings(ctx, currentUser(c), f)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/listings/:id.
func (h *ListingHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    l, err := h.Listings.GetListing(ctx, currentUser(c), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, l)
}

// Create handles POST /api/listings.
func (h *ListingHandler) Create(c echo.Context) error {
    var in service.ListingInput
    if err := c.Bind(&in); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    l, err := h.Listings.CreateListing(ctx, currentUser(c), in)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, l)
}

// Update handles PATCH /api/listings/:id.
func (h *ListingHandler) Update(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    var p service.ListingPatch
    if err := c.Bind(&p); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    l, err := h.Listings.UpdateListing(ctx, currentUser(c), id, p)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, l)
}

// UploadImage handles POST /api/listings/:id/images.  The multipart field
// "image" must hold a JPEG, PNG or WebP file no larger than MaxUpload; the
// type is sniffed from the content, not trusted from the client.  Every
// check runs before anything is written to disk.
func (h *ListingHandler) UploadImage(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if _, err := h.Listings.AuthorizeImageUpload(ctx, currentUser(c), id); err != nil {
        return writeError(c, err)
    }

    fh, err := c.FormFile("image")
    if err != nil {
        return badRequest(c, "image", "no file uploaded")
    }
    if fh.Size > h.MaxUpload {
        return badRequest(c, "image", "image must be at most "+strconv.FormatInt(h.MaxUpload/(1024*1024), 10)+"MB")
    }
    src, err := fh.Open()
    if err != nil {
        return writeError(c, err)
    }
    defer src.Close()

    head := make([]byte, 512)
    n, err := io.ReadFull(src, head)
    if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
        return writeError(c, err)
    }
    ext, ok := allowedImageTypes[http.DetectContentType(head[:n])]
    if !ok {
        return badRequest(c, "image", "only jpeg, png and webp images are allowed")
    }
    if _, err := src.Seek(0, io.SeekStart); err != nil {
        return writeError(c, err)
    }

    if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
        return writeError(c, err)
    }
    name := uuid.NewString() + ext
    path := filepath.Join(h.UploadDir, name)
    dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
    if err != nil {
        return writeError(c, err)
    }
    if _, err := io.Copy(dst, io.LimitReader(src, h.MaxUpload)); err != nil {
        dst.Close()
        os.Remove(path)
        return writeError(c, err)
    }
    if err := dst.Close(); err != nil {
        os.Remove(path)
        return writeError(c, err)
    }

    img, err := h.Listings.AddImage(ctx, id, "/uploads/"+name, c.FormValue("isTitle") == "true")
    if err != nil {
        os.Remove(path)
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, img)
}

// parseListingFilter reads the search query string.  Numeric parameters
// that do not parse are reported as validation errors.
func parseListingFilter(q url.Values) (model.ListingFilter, error) {
    f := model.ListingFilter{
        Search:           strings.TrimSpace(q.Get("search")),
        Department:       q.Get("department"),
        City:             q.Get("city"),
        Zone:             q.Get("zone"),
        Currency:         strings.ToUpper(q.Get("currency")),
        OwnerType:        q.Get("ownerType"),
        OwnerName:        strings.TrimSpace(q.Get("ownerName")),
        TitleStatus:      q.Get("titleStatus"),
        PaymentCondition: q.Get("paymentCondition"),
        Status:           q.Get("status"),
        SortBy:           q.Get("sortBy"),
    }
    floats := []struct {
        name string
        dst  **float64
    }{
        {"minPrice", &f.MinPrice},
        {"maxPrice", &f.MaxPrice},
        {"minSize", &f.MinSize},
        {"maxSize", &f.MaxSize},
        {"minRating", &f.MinRating},
    }
    for _, p := range floats {
        v := q.Get(p.name)
        if v == "" {
            continue
        }
        n, err := strconv.ParseFloat(v, 64)
        if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
            return f, &service.ValidationError{Field: p.name, Message: p.name + " must be a number"}
        }
        *p.dst = &n
    }
    ints := []struct {
        name string
        dst  *int
    }{
        {"limit", &f.Limit},
        {"page", &f.Page},
    }
    for _, p := range ints {
        v := q.Get(p.name)
        if v == "" {
            continue
        }
        n, err := strconv.Atoi(v)
        if err != nil || n < 0 {
            return f, &service.ValidationError{Field: p.name, Message: p.name + " must be a positive integer"}
        }
        if p.name == "page" && n > maxListingPage {
            return f, &service.ValidationError{Field: "page", Message: "page must be at most " + strconv.Itoa(maxListingPage)}
        }
        *p.dst = n
    }
    if v := q.Get("userId"); v != "" {
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            return f, &service.ValidationError{Field: "userId", Message: "userId must be a number"}
        }
        f.UserID = id
    }
    return f, nil
}
