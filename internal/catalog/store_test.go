package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestNewStore_Validation(t *testing.T) {
	valid := func() Product {
		p := product("1", "Desk Lamp", "Home & Garden", "")
		p.OriginalPrice = decimalPtr(20)
		p.Seller = Seller{Name: "Ann", Rating: 4.2}
		return p
	}

	tests := []struct {
		name    string
		mutate  func(p *Product)
		second  *Product
		wantErr bool
	}{
		{name: "valid product", mutate: func(*Product) {}},
		{name: "missing id", mutate: func(p *Product) { p.ID = "" }, wantErr: true},
		{name: "missing title", mutate: func(p *Product) { p.Title = "" }, wantErr: true},
		{name: "negative price", mutate: func(p *Product) { p.Price = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "original price below price", mutate: func(p *Product) { p.OriginalPrice = decimalPtr(5) }, wantErr: true},
		{name: "original price equal to price", mutate: func(p *Product) { p.OriginalPrice = decimalPtr(10) }},
		{name: "no original price", mutate: func(p *Product) { p.OriginalPrice = nil }},
		{name: "zero price", mutate: func(p *Product) { p.Price = decimal.Zero }},
		{name: "missing category", mutate: func(p *Product) { p.Category = "" }, wantErr: true},
		{name: "missing condition", mutate: func(p *Product) { p.Condition = "" }, wantErr: true},
		{name: "rating above five", mutate: func(p *Product) { p.Seller.Rating = 5.1 }, wantErr: true},
		{name: "duplicate id", mutate: func(*Product) {}, second: func() *Product { p := valid(); return &p }(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			products := []Product{p}
			if tt.second != nil {
				products = append(products, *tt.second)
			}

			_, err := NewStore(products, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCatalog) {
					t.Fatalf("want ErrInvalidCatalog, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestStore_CopiesAreIsolated(t *testing.T) {
	input := []Product{product("1", "Bike", "Sports", "")}
	input[0].Images = []string{"a.jpg"}
	input[0].OriginalPrice = decimalPtr(50)

	store, err := NewStore(input, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input[0].Title = "mutated input"
	input[0].Images[0] = "mutated.jpg"

	got := store.Products()
	got[0].Images[0] = "mutated-output.jpg"
	*got[0].OriginalPrice = decimal.NewFromInt(1)

	p, err := store.Product("1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Bike" {
		t.Fatalf("want title Bike, got %q", p.Title)
	}
	if p.Images[0] != "a.jpg" {
		t.Fatalf("want image a.jpg, got %q", p.Images[0])
	}
	if !p.OriginalPrice.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("want original price 50, got %s", p.OriginalPrice)
	}
}

func TestStore_Product(t *testing.T) {
	store, err := NewStore(sampleCatalog(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := store.Product("3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "MacBook Air M1" {
		t.Fatalf("want MacBook Air M1, got %q", p.Title)
	}

	if _, err := store.Product("404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestStore_FeedSlices(t *testing.T) {
	numbered := func(n int) []Product {
		out := make([]Product, 0, n)
		for i := 1; i <= n; i++ {
			out = append(out, product(fmt.Sprint(i), fmt.Sprintf("Item %d", i), "Books", ""))
		}
		return out
	}

	tests := []struct {
		name         string
		size         int
		wantFeatured []string
		wantRecent   []string
	}{
		{
			name:         "full feed",
			size:         10,
			wantFeatured: []string{"1", "2", "3", "4"},
			wantRecent:   []string{"5", "6", "7", "8"},
		},
		{
			name:         "short catalog clamps recent",
			size:         6,
			wantFeatured: []string{"1", "2", "3", "4"},
			wantRecent:   []string{"5", "6"},
		},
		{
			name:         "tiny catalog has no recent items",
			size:         2,
			wantFeatured: []string{"1", "2"},
			wantRecent:   []string{},
		},
		{
			name:         "empty catalog",
			size:         0,
			wantFeatured: []string{},
			wantRecent:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(numbered(tt.size), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantFeatured, ids(store.Featured())); diff != "" {
				t.Fatalf("featured mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRecent, ids(store.Recent())); diff != "" {
				t.Fatalf("recent mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_Favorites(t *testing.T) {
	catalog := sampleCatalog()
	catalog[1].IsFavorite = true
	catalog[4].IsFavorite = true

	store, err := NewStore(catalog, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"2", "5"}, ids(store.Favorites())); diff != "" {
		t.Fatalf("favorites mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SearchAndBrowse(t *testing.T) {
	store, err := NewStore(sampleCatalog(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Search("jacket", AllCategories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"4"}, ids(got)); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	got, err = store.ByCategory("Electronics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "3"}, ids(got)); diff != "" {
		t.Fatalf("browse mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Version(t *testing.T) {
	base, _ := NewStore(sampleCatalog(), nil)
	same, _ := NewStore(sampleCatalog(), nil)
	if base.Version() != same.Version() {
		t.Fatalf("same contents produced versions %q and %q", base.Version(), same.Version())
	}

	tests := []struct {
		name   string
		mutate func(p *Product)
	}{
		{name: "title", mutate: func(p *Product) { p.Title = "iPhone 14" }},
		{name: "location", mutate: func(p *Product) { p.Location = "Denver, CO" }},
		{name: "image", mutate: func(p *Product) { p.Image = "https://example.com/other.jpg" }},
		{name: "images", mutate: func(p *Product) { p.Images = []string{"https://example.com/a.jpg"} }},
		{name: "seller", mutate: func(p *Product) { p.Seller.Name = "Someone Else" }},
		{name: "seller rating", mutate: func(p *Product) { p.Seller.Rating = 3.1 }},
		{name: "created at", mutate: func(p *Product) { p.CreatedAt = "2023-12-31" }},
		{name: "favorite", mutate: func(p *Product) { p.IsFavorite = !p.IsFavorite }},
		{name: "original price", mutate: func(p *Product) { p.OriginalPrice = decimalPtr(5000) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := sampleCatalog()
			tt.mutate(&changed[0])
			s, err := NewStore(changed, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Version() == base.Version() {
				t.Fatalf("changing %s kept version %q", tt.name, s.Version())
			}
		})
	}

	t.Run("nil and empty images hash the same", func(t *testing.T) {
		withNil := sampleCatalog()
		withEmpty := sampleCatalog()
		withNil[0].Images = nil
		withEmpty[0].Images = []string{}
		a, _ := NewStore(withNil, nil)
		b, _ := NewStore(withEmpty, nil)
		if a.Version() != b.Version() {
			t.Fatalf("want equal versions, got %q and %q", a.Version(), b.Version())
		}
	})
}
