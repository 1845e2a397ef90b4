package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const (
	featuredCount = 4
	recentCount   = 4
	maxRating     = 5.0
)

// Store is a read-only catalog snapshot built once at startup. Every accessor
// returns copies, so callers cannot mutate the snapshot and concurrent readers
// need no locking.
type Store struct {
	products   []Product
	categories []Category
	index      map[string]int
	version    string
}

// NewStore validates products and copies them, together with the browse
// categories, into a new Store.
func NewStore(products []Product, categories []Category) (*Store, error) {
	s := &Store{
		products:   make([]Product, 0, len(products)),
		categories: append([]Category(nil), categories...),
		index:      make(map[string]int, len(products)),
	}

	for i, p := range products {
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		if _, dup := s.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, p.ID)
		}
		s.index[p.ID] = len(s.products)
		s.products = append(s.products, p.clone())
	}

	s.version = digest(s.products)
	return s, nil
}

func validateProduct(p Product) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidCatalog)
	case p.Title == "":
		return fmt.Errorf("%w: title is required for %q", ErrInvalidCatalog, p.ID)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: negative price for %q", ErrInvalidCatalog, p.ID)
	case p.OriginalPrice != nil && p.OriginalPrice.LessThan(p.Price):
		return fmt.Errorf("%w: original price below price for %q", ErrInvalidCatalog, p.ID)
	case p.Category == "":
		return fmt.Errorf("%w: category is required for %q", ErrInvalidCatalog, p.ID)
	case p.Condition == "":
		return fmt.Errorf("%w: condition is required for %q", ErrInvalidCatalog, p.ID)
	case p.Seller.Rating < 0 || p.Seller.Rating > maxRating:
		return fmt.Errorf("%w: seller rating out of range for %q", ErrInvalidCatalog, p.ID)
	}
	return nil
}

// Products returns the whole catalog in catalog order.
func (s *Store) Products() []Product {
	return cloneAll(s.products)
}

func (s *Store) Len() int {
	return len(s.products)
}

func (s *Store) Search(query, category string) ([]Product, error) {
	return Filter(s.Products(), query, category)
}

func (s *Store) ByCategory(category string) ([]Product, error) {
	return Filter(s.Products(), "", category)
}

func (s *Store) Product(id string) (Product, error) {
	i, ok := s.index[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return s.products[i].clone(), nil
}

// Featured returns the first products of the catalog, as shown at the top of
// the home feed.
func (s *Store) Featured() []Product {
	return cloneAll(window(s.products, 0, featuredCount))
}

// Recent returns the products following the featured ones.
func (s *Store) Recent() []Product {
	return cloneAll(window(s.products, featuredCount, featuredCount+recentCount))
}

func (s *Store) Favorites() []Product {
	favorites := make([]Product, 0)
	for _, p := range s.products {
		if p.IsFavorite {
			favorites = append(favorites, p.clone())
		}
	}
	return favorites
}

func (s *Store) Categories() []Category {
	return append(make([]Category, 0, len(s.categories)), s.categories...)
}

// Version identifies the catalog contents. Two stores built from the same
// products share a version.
func (s *Store) Version() string {
	return s.version
}

func window(products []Product, from, to int) []Product {
	if from > len(products) {
		from = len(products)
	}
	if to > len(products) {
		to = len(products)
	}
	return products[from:to]
}

func cloneAll(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.clone()
	}
	return out
}

// digest hashes the full encoding of every product. Nil and empty image lists
// hash the same so a Postgres snapshot and its seed share a version.
func digest(products []Product) string {
	h := xxhash.New()
	enc := json.NewEncoder(h)
	for _, p := range products {
		if p.Images == nil {
			p.Images = []string{}
		}
		_ = enc.Encode(p)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
