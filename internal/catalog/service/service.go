package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"thryft-club/internal/catalog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Catalog interface {
	Products() []catalog.Product
	Product(id string) (catalog.Product, error)
	Featured() []catalog.Product
	Recent() []catalog.Product
	Favorites() []catalog.Product
	Categories() []catalog.Category
	Version() string
}

type Cache interface {
	Get(ctx context.Context, version, query, category string) ([]catalog.Product, bool, error)
	Set(ctx context.Context, version, query, category string, products []catalog.Product) error
}

type Publisher interface {
	Publish(ctx context.Context, event catalog.CatalogEvent) error
}

type Metrics struct {
	Searches          prometheus.Counter
	CacheHits         prometheus.Counter
	FavoriteToggles   prometheus.Counter
	ListingsSubmitted prometheus.Counter
}

// Feed holds the two home screen sections.
type Feed struct {
	Featured []catalog.Product `json:"featured"`
	Recent   []catalog.Product `json:"recent"`
}

type Service struct {
	catalog   Catalog
	cache     Cache
	publisher Publisher
	logger    *slog.Logger
	metrics   Metrics
	now       func() time.Time
}

// New wires a Service. cache may be nil, in which case every search runs the
// filter.
func New(c Catalog, cache Cache, publisher Publisher, logger *slog.Logger, metrics Metrics) *Service {
	return &Service{
		catalog:   c,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Search filters the catalog and returns the requested page of matches along
// with the total number of matches.
func (s *Service) Search(ctx context.Context, query, category string, page, limit int) ([]catalog.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	matches, err := s.matches(ctx, query, category)
	if err != nil {
		return nil, 0, err
	}
	s.metrics.Searches.Inc()

	total := int64(len(matches))
	offset := (page - 1) * limit
	if offset >= len(matches) {
		return []catalog.Product{}, total, nil
	}
	end := min(offset+limit, len(matches))
	return matches[offset:end], total, nil
}

func (s *Service) matches(ctx context.Context, query, category string) ([]catalog.Product, error) {
	version := s.catalog.Version()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, version, query, category)
		if err != nil {
			s.logger.Warn("search cache read failed", "error", err)
		}
		if ok {
			s.metrics.CacheHits.Inc()
			return cached, nil
		}
	}

	matches, err := catalog.Filter(s.catalog.Products(), query, category)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, version, query, category, matches); err != nil {
			s.logger.Warn("search cache write failed", "error", err)
		}
	}
	return matches, nil
}

func (s *Service) Product(_ context.Context, id string) (catalog.Product, error) {
	p, err := s.catalog.Product(id)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %q: %w", id, err)
	}
	return p, nil
}

func (s *Service) Feed(_ context.Context) Feed {
	return Feed{
		Featured: s.catalog.Featured(),
		Recent:   s.catalog.Recent(),
	}
}

func (s *Service) Categories(_ context.Context) []catalog.Category {
	return s.catalog.Categories()
}

func (s *Service) Favorites(_ context.Context) []catalog.Product {
	return s.catalog.Favorites()
}

// ToggleFavorite records a request to flip the favorite flag of a product and
// returns the requested value. The catalog itself is read-only, so the flag
// is only reported downstream.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	p, err := s.catalog.Product(id)
	if err != nil {
		return false, fmt.Errorf("product %q: %w", id, err)
	}

	requested := !p.IsFavorite
	s.logger.Info("favorite toggled", "product_id", id, "is_favorite", requested)

	if err := s.publisher.Publish(ctx, catalog.CatalogEvent{
		EventType:  catalog.EventFavoriteToggled,
		ProductID:  p.ID,
		Title:      p.Title,
		IsFavorite: &requested,
		Timestamp:  s.now().UTC(),
	}); err != nil {
		s.logger.Error("publish favorite_toggled event failed",
			"product_id", id,
			"error", err,
		)
	}

	s.metrics.FavoriteToggles.Inc()
	return requested, nil
}

// SubmitListing validates a sell-form submission and hands it off as a
// pending listing. It does not add the item to the catalog.
func (s *Service) SubmitListing(ctx context.Context, draft catalog.ListingDraft) (catalog.Listing, error) {
	listing, err := validateListing(draft)
	if err != nil {
		return catalog.Listing{}, err
	}

	listing.ID = uuid.NewString()
	listing.Status = catalog.ListingStatusPending
	listing.SubmittedAt = s.now().UTC()

	if err := s.publisher.Publish(ctx, catalog.CatalogEvent{
		EventType: catalog.EventListingSubmitted,
		ListingID: listing.ID,
		Title:     listing.Title,
		Timestamp: listing.SubmittedAt,
	}); err != nil {
		s.logger.Error("publish listing_submitted event failed",
			"listing_id", listing.ID,
			"error", err,
		)
	}

	s.metrics.ListingsSubmitted.Inc()
	return listing, nil
}

func validateListing(draft catalog.ListingDraft) (catalog.Listing, error) {
	title := strings.TrimSpace(draft.Title)
	rawPrice := strings.TrimSpace(draft.Price)
	category := strings.TrimSpace(draft.Category)
	condition := strings.TrimSpace(draft.Condition)

	if title == "" || rawPrice == "" || category == "" {
		return catalog.Listing{}, fmt.Errorf("%w: title, price and category are required", catalog.ErrInvalidListing)
	}

	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return catalog.Listing{}, fmt.Errorf("%w: price %q is not a number", catalog.ErrInvalidListing, rawPrice)
	}
	if price.IsNegative() {
		return catalog.Listing{}, fmt.Errorf("%w: price must not be negative", catalog.ErrInvalidListing)
	}
	if !slices.Contains(catalog.ListingCategories, category) {
		return catalog.Listing{}, fmt.Errorf("%w: unknown category %q", catalog.ErrInvalidListing, category)
	}
	if condition != "" && !slices.Contains(catalog.Conditions, condition) {
		return catalog.Listing{}, fmt.Errorf("%w: unknown condition %q", catalog.ErrInvalidListing, condition)
	}

	images := draft.Images
	if images == nil {
		images = []string{}
	}

	return catalog.Listing{
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		Price:       price,
		Category:    category,
		Condition:   condition,
		Location:    strings.TrimSpace(draft.Location),
		Images:      images,
	}, nil
}
