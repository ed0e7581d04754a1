package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing types.
const (
	TypeRent = "rent"
	TypeSale = "sale"
)

// Listing is a single real-estate listing stored in MongoDB. Each listing is
// owned by exactly one user through UserRef.
type Listing struct {
	ID            primitive.ObjectID `json:"id"            bson:"_id,omitempty"`
	Name          string             `json:"name"          bson:"name"`
	Description   string             `json:"description"   bson:"description"`
	Address       string             `json:"address"       bson:"address"`
	Type          string             `json:"type"          bson:"type"` // rent or sale
	Bedrooms      int                `json:"bedrooms"      bson:"bedrooms"`
	Bathrooms     int                `json:"bathrooms"     bson:"bathrooms"`
	RegularPrice  int                `json:"regularPrice"  bson:"regular_price"`
	DiscountPrice int                `json:"discountPrice" bson:"discount_price"`
	Offer         bool               `json:"offer"         bson:"offer"`
	Parking       bool               `json:"parking"       bson:"parking"`
	Furnished     bool               `json:"furnished"     bson:"furnished"`
	ImageURLs     []string           `json:"imageUrls"     bson:"image_urls"`
	UserRef       string             `json:"userRef"       bson:"user_ref"`
	CreatedAt     time.Time          `json:"created_at"    bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"    bson:"updated_at"`
}

// UpdateListingRequest carries the optional fields for
// POST /api/v1/listing/update/{id}. Pointers distinguish an absent field
// from a zero value.
type UpdateListingRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Address       *string   `json:"address"`
	Type          *string   `json:"type"`
	Bedrooms      *int      `json:"bedrooms"`
	Bathrooms     *int      `json:"bathrooms"`
	RegularPrice  *int      `json:"regularPrice"`
	DiscountPrice *int      `json:"discountPrice"`
	Offer         *bool     `json:"offer"`
	Parking       *bool     `json:"parking"`
	Furnished     *bool     `json:"furnished"`
	ImageURLs     *[]string `json:"imageUrls"`
}

// SearchQuery is the parsed filter set for GET /api/v1/listing/get. Boolean
// filters mean "require true" when set; unset means no filter.
type SearchQuery struct {
	SearchTerm string
	Type       string // rent, sale, or "" for any
	Parking    bool
	Furnished  bool
	Offer      bool
	Sort       string // bson field name, whitelist-mapped by the handler
	Order      int    // 1 ascending, -1 descending
	Limit      int64  // 0 means no limit
	StartIndex int64
}
