package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput   = errors.New("invalid filter input")
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrNotFound       = errors.New("product not found")
	ErrInvalidListing = errors.New("invalid listing")
)

// AllCategories disables category narrowing.
const AllCategories = "All"

const (
	EventsQueue           = "catalog.events"
	EventFavoriteToggled  = "favorite_toggled"
	EventListingSubmitted = "listing_submitted"
)

const (
	ConditionNew       = "New"
	ConditionLikeNew   = "Like New"
	ConditionExcellent = "Excellent"
	ConditionGood      = "Good"
	ConditionFair      = "Fair"
	ConditionPoor      = "Poor"
)

// Conditions lists the quality grades in the order the sell form offers them.
var Conditions = []string{
	ConditionNew,
	ConditionLikeNew,
	ConditionExcellent,
	ConditionGood,
	ConditionFair,
	ConditionPoor,
}

// ListingCategories are the categories a seller may pick when listing an item.
var ListingCategories = []string{
	"Electronics",
	"Clothing",
	"Home & Garden",
	"Sports",
	"Books",
	"Vehicles",
	"Other",
}

type Seller struct {
	Name   string  `json:"name" yaml:"name" example:"John Smith"`
	Avatar string  `json:"avatar" yaml:"avatar"`
	Rating float64 `json:"rating" yaml:"rating" example:"4.8"`
}

type Product struct {
	ID            string           `json:"id" yaml:"id" example:"1"`
	Title         string           `json:"title" yaml:"title" example:"iPhone 13 Pro - Excellent Condition"`
	Price         decimal.Decimal  `json:"price" yaml:"price" swaggertype:"string" example:"899"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" yaml:"original_price" swaggertype:"string" example:"1099"`
	Image         string           `json:"image" yaml:"image"`
	Category      string           `json:"category" yaml:"category" example:"Electronics"`
	Condition     string           `json:"condition" yaml:"condition" example:"Excellent"`
	Location      string           `json:"location" yaml:"location" example:"New York, NY"`
	Description   string           `json:"description,omitempty" yaml:"description"`
	Seller        Seller           `json:"seller" yaml:"seller"`
	Images        []string         `json:"images" yaml:"images"`
	CreatedAt     string           `json:"created_at" yaml:"created_at" example:"2024-01-15"`
	IsFavorite    bool             `json:"is_favorite" yaml:"is_favorite"`
}

type Category struct {
	ID    string `json:"id" yaml:"id" example:"1"`
	Name  string `json:"name" yaml:"name" example:"Electronics"`
	Icon  string `json:"icon" yaml:"icon"`
	Count int    `json:"count" yaml:"count" example:"156"`
}

// ListingDraft is a sell-form submission as entered by the seller.
type ListingDraft struct {
	Title       string   `json:"title" example:"Road bike"`
	Description string   `json:"description"`
	Price       string   `json:"price" example:"250"`
	Category    string   `json:"category" example:"Sports"`
	Condition   string   `json:"condition" example:"Good"`
	Location    string   `json:"location" example:"Austin, TX"`
	Images      []string `json:"images"`
}

type Listing struct {
	ID          string          `json:"id" example:"7d1c2b9e-4c55-4c2a-9f2f-5a0b8c1f6d3e"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition,omitempty"`
	Location    string          `json:"location,omitempty"`
	Images      []string        `json:"images"`
	Status      string          `json:"status" example:"pending"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

const ListingStatusPending = "pending"

type CatalogEvent struct {
	EventType  string    `json:"event_type"`
	ProductID  string    `json:"product_id,omitempty"`
	ListingID  string    `json:"listing_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	IsFavorite *bool     `json:"is_favorite,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func (p Product) clone() Product {
	if p.OriginalPrice != nil {
		op := *p.OriginalPrice
		p.OriginalPrice = &op
	}
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	return p
}
