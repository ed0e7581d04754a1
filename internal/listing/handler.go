package listing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arjun/estate-market/backend/internal/middleware"
	"github.com/arjun/estate-market/backend/internal/models"
	"github.com/arjun/estate-market/backend/internal/store"
	"github.com/arjun/estate-market/backend/internal/web"
)

// maxImages caps the image list per listing.
const maxImages = 6

// ListingStore defines listing persistence.
type ListingStore interface {
	Insert(ctx context.Context, l *models.Listing) (*models.Listing, error)
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	Update(ctx context.Context, l *models.Listing) (*models.Listing, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q models.SearchQuery) ([]models.Listing, int64, error)
}

// Handler holds the listing HTTP handlers.
type Handler struct {
	listings ListingStore
}

func NewHandler(listings ListingStore) *Handler {
	return &Handler{listings: listings}
}

type listingResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Listing *models.Listing `json:"listing"`
}

// Create stores a new listing owned by the authenticated user. An explicit
// userRef is accepted only when it matches the caller's identity.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var l models.Listing
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateListing(&l); msg != "" {
		web.Error(w, http.StatusBadRequest, msg)
		return
	}
	if l.UserRef == "" {
		l.UserRef = ident.ID
	} else if !ident.Owns(l.UserRef) {
		web.Error(w, http.StatusForbidden, "you can only create listings for your own account")
		return
	}

	created, err := h.listings.Insert(r.Context(), &l)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not create listing")
		return
	}

	web.JSON(w, http.StatusCreated, listingResponse{
		Success: true,
		Message: "listing created successfully",
		Listing: created,
	})
}

// Get returns a single listing by id. Public.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "listing not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not load listing")
		return
	}
	web.JSON(w, http.StatusOK, l)
}

// Update applies a partial change to a listing. The listing is loaded
// before the ownership check so a missing id reports 404 while a foreign
// one reports 403.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	l, err := h.listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "listing not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not load listing")
		return
	}
	if !ident.Owns(l.UserRef) {
		web.Error(w, http.StatusForbidden, "you can only update your own listings")
		return
	}

	var req models.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	applyUpdate(l, &req)
	if msg := validateListing(l); msg != "" {
		web.Error(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.listings.Update(r.Context(), l)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "listing not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not update listing")
		return
	}

	web.JSON(w, http.StatusOK, listingResponse{
		Success: true,
		Message: "listing updated successfully",
		Listing: updated,
	})
}

// Delete removes a listing. Same 404-before-403 ordering as Update.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		web.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	l, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "listing not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not load listing")
		return
	}
	if !ident.Owns(l.UserRef) {
		web.Error(w, http.StatusForbidden, "you can only delete your own listings")
		return
	}

	if err := h.listings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "listing not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "could not delete listing")
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "listing deleted successfully",
	})
}

type searchResponse struct {
	Success       bool             `json:"success"`
	TotalListings int64            `json:"totalListings"`
	Listings      []models.Listing `json:"listings"`
}

// Search filters listings by the recognized query parameters. Public; no
// filters at all returns the full set in the default sort order.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := parseSearchQuery(r)

	listings, total, err := h.listings.Search(r.Context(), q)
	if err != nil {
		web.Error(w, http.StatusInternalServerError, "could not search listings")
		return
	}

	web.JSON(w, http.StatusOK, searchResponse{
		Success:       true,
		TotalListings: total,
		Listings:      listings,
	})
}

func parseSearchQuery(r *http.Request) models.SearchQuery {
	params := r.URL.Query()

	typ := params.Get("type")
	if typ == "all" {
		typ = ""
	}

	order := -1
	if params.Get("order") == "asc" {
		order = 1
	}

	return models.SearchQuery{
		SearchTerm: strings.TrimSpace(params.Get("searchTerm")),
		Type:       typ,
		Parking:    params.Get("parking") == "true",
		Furnished:  params.Get("furnished") == "true",
		Offer:      params.Get("offer") == "true",
		Sort:       sortField(params.Get("sort")),
		Order:      order,
		Limit:      parseInt64(params.Get("limit")),
		StartIndex: parseInt64(params.Get("startIndex")),
	}
}

// sortField maps caller-facing sort keys to bson field names. Unknown keys
// fall back to the default creation-order sort.
func sortField(s string) string {
	switch s {
	case "regularPrice", "regular_price":
		return "regular_price"
	case "discountPrice", "discount_price":
		return "discount_price"
	default:
		return "created_at"
	}
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// applyUpdate copies the present fields of req onto l.
func applyUpdate(l *models.Listing, req *models.UpdateListingRequest) {
	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Address != nil {
		l.Address = *req.Address
	}
	if req.Type != nil {
		l.Type = *req.Type
	}
	if req.Bedrooms != nil {
		l.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		l.Bathrooms = *req.Bathrooms
	}
	if req.RegularPrice != nil {
		l.RegularPrice = *req.RegularPrice
	}
	if req.DiscountPrice != nil {
		l.DiscountPrice = *req.DiscountPrice
	}
	if req.Offer != nil {
		l.Offer = *req.Offer
	}
	if req.Parking != nil {
		l.Parking = *req.Parking
	}
	if req.Furnished != nil {
		l.Furnished = *req.Furnished
	}
	if req.ImageURLs != nil {
		l.ImageURLs = *req.ImageURLs
	}
}

func validateListing(l *models.Listing) string {
	if strings.TrimSpace(l.Name) == "" {
		return "name is required"
	}
	if l.Type != models.TypeRent && l.Type != models.TypeSale {
		return "type must be rent or sale"
	}
	if len(l.ImageURLs) == 0 || len(l.ImageURLs) > maxImages {
		return "a listing must have between 1 and 6 images"
	}
	return ""
}
