package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"thryft-club/internal/catalog"
	"thryft-club/internal/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type stubService struct {
	searchFn   func(ctx context.Context, query, category string, page, limit int) ([]catalog.Product, int64, error)
	productFn  func(ctx context.Context, id string) (catalog.Product, error)
	toggleFn   func(ctx context.Context, id string) (bool, error)
	submitFn   func(ctx context.Context, draft catalog.ListingDraft) (catalog.Listing, error)
	feed       service.Feed
	categories []catalog.Category
	favorites  []catalog.Product
}

func (s *stubService) Search(ctx context.Context, query, category string, page, limit int) ([]catalog.Product, int64, error) {
	return s.searchFn(ctx, query, category, page, limit)
}
func (s *stubService) Product(ctx context.Context, id string) (catalog.Product, error) {
	return s.productFn(ctx, id)
}
func (s *stubService) Feed(context.Context) service.Feed             { return s.feed }
func (s *stubService) Categories(context.Context) []catalog.Category { return s.categories }
func (s *stubService) Favorites(context.Context) []catalog.Product   { return s.favorites }
func (s *stubService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	return s.toggleFn(ctx, id)
}
func (s *stubService) SubmitListing(ctx context.Context, draft catalog.ListingDraft) (catalog.Listing, error) {
	return s.submitFn(ctx, draft)
}

func setupRouter(svc CatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.GET("/products", h.SearchProducts)
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products/:id/favorite", h.ToggleFavorite)
	r.POST("/listings", h.SubmitListing)
	r.GET("/categories", h.ListCategories)
	r.GET("/feed", h.GetFeed)
	r.GET("/favorites", h.ListFavorites)
	return r
}

func TestHandler_SearchProducts(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		items        []catalog.Product
		total        int64
		svcErr       error
		wantStatus   int
		wantLen      int
		wantQuery    string
		wantCategory string
		wantPage     int
		wantLimit    int
	}{
		{
			name:         "defaults",
			url:          "/products",
			items:        []catalog.Product{{ID: "1"}, {ID: "2"}},
			total:        2,
			wantStatus:   http.StatusOK,
			wantLen:      2,
			wantCategory: catalog.AllCategories,
			wantPage:     1,
			wantLimit:    10,
		},
		{
			name:         "query, category and paging are forwarded",
			url:          "/products?q=iPhone&category=Home+%26+Garden&page=2&limit=5",
			items:        []catalog.Product{},
			wantStatus:   http.StatusOK,
			wantQuery:    "iPhone",
			wantCategory: "Home & Garden",
			wantPage:     2,
			wantLimit:    5,
		},
		{
			name:         "invalid paging falls back",
			url:          "/products?page=abc&limit=-3",
			items:        []catalog.Product{},
			wantStatus:   http.StatusOK,
			wantCategory: catalog.AllCategories,
			wantPage:     1,
			wantLimit:    10,
		},
		{
			name:         "explicit empty category is rejected",
			url:          "/products?category=",
			svcErr:       fmt.Errorf("filter: %w", catalog.ErrInvalidInput),
			wantStatus:   http.StatusBadRequest,
			wantCategory: "",
			wantPage:     1,
			wantLimit:    10,
		},
		{
			name:         "internal failure",
			url:          "/products",
			svcErr:       errors.New("boom"),
			wantStatus:   http.StatusInternalServerError,
			wantCategory: catalog.AllCategories,
			wantPage:     1,
			wantLimit:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				searchFn: func(_ context.Context, query, category string, page, limit int) ([]catalog.Product, int64, error) {
					if query != tt.wantQuery || category != tt.wantCategory || page != tt.wantPage || limit != tt.wantLimit {
						t.Fatalf("unexpected args q=%q category=%q page=%d limit=%d", query, category, page, limit)
					}
					if tt.svcErr != nil {
						return nil, 0, tt.svcErr
					}
					return tt.items, tt.total, nil
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp searchResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(resp.Items) != tt.wantLen {
				t.Fatalf("want %d items, got %d", tt.wantLen, len(resp.Items))
			}
			if resp.Pagination.Total != tt.total {
				t.Fatalf("want total %d, got %d", tt.total, resp.Pagination.Total)
			}
		})
	}
}

func TestHandler_GetProduct(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		svcErr     error
		wantStatus int
	}{
		{name: "success", url: "/products/1", wantStatus: http.StatusOK},
		{name: "not found", url: "/products/999", svcErr: fmt.Errorf("product %q: %w", "999", catalog.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "internal failure", url: "/products/1", svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				productFn: func(_ context.Context, id string) (catalog.Product, error) {
					if tt.svcErr != nil {
						return catalog.Product{}, tt.svcErr
					}
					return catalog.Product{ID: id, Title: "Lamp", Price: decimal.NewFromInt(12)}, nil
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var p catalog.Product
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if p.ID != "1" || !p.Price.Equal(decimal.NewFromInt(12)) {
				t.Fatalf("unexpected product %+v", p)
			}
		})
	}
}

func TestHandler_ToggleFavorite(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		svcErr     error
		wantStatus int
	}{
		{name: "accepted", url: "/products/2/favorite", wantStatus: http.StatusAccepted},
		{name: "not found", url: "/products/999/favorite", svcErr: catalog.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				toggleFn: func(_ context.Context, _ string) (bool, error) {
					return true, tt.svcErr
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.url, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusAccepted {
				return
			}

			var resp favoriteResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.ProductID != "2" || !resp.IsFavorite {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}

func TestHandler_SubmitListing(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{
			name:       "accepted",
			body:       `{"title":"Road Bike","price":"250","category":"Sports"}`,
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "invalid json",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation error",
			body:       `{"title":"Road Bike"}`,
			svcErr:     fmt.Errorf("%w: title, price and category are required", catalog.ErrInvalidListing),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "internal failure",
			body:       `{"title":"Road Bike","price":"250","category":"Sports"}`,
			svcErr:     errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				submitFn: func(_ context.Context, draft catalog.ListingDraft) (catalog.Listing, error) {
					if tt.svcErr != nil {
						return catalog.Listing{}, tt.svcErr
					}
					return catalog.Listing{ID: "abc", Title: draft.Title, Status: catalog.ListingStatusPending}, nil
				},
			}

			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("want status %d, got %d, body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandler_ReadOnlyViews(t *testing.T) {
	svc := &stubService{
		feed: service.Feed{
			Featured: []catalog.Product{{ID: "1"}, {ID: "2"}},
			Recent:   []catalog.Product{{ID: "5"}},
		},
		categories: []catalog.Category{{ID: "1", Name: "Electronics", Count: 156}},
		favorites:  []catalog.Product{{ID: "1"}, {ID: "3"}, {ID: "6"}},
	}
	r := setupRouter(svc)

	get := func(url string, out any) {
		t.Helper()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: want status 200, got %d", url, w.Code)
		}
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("%s: decode response: %v", url, err)
		}
	}

	var feed service.Feed
	get("/feed", &feed)
	if len(feed.Featured) != 2 || len(feed.Recent) != 1 {
		t.Fatalf("unexpected feed %+v", feed)
	}

	var categories categoriesResponse
	get("/categories", &categories)
	if len(categories.Items) != 1 || categories.Items[0].Name != "Electronics" {
		t.Fatalf("unexpected categories %+v", categories)
	}

	var favorites productsResponse
	get("/favorites", &favorites)
	if len(favorites.Items) != 3 {
		t.Fatalf("want 3 favorites, got %d", len(favorites.Items))
	}
}
