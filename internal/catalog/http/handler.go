package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"thryft-club/internal/catalog"
	"thryft-club/internal/catalog/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type CatalogService interface {
	Search(ctx context.Context, query, category string, page, limit int) ([]catalog.Product, int64, error)
	Product(ctx context.Context, id string) (catalog.Product, error)
	Feed(ctx context.Context) service.Feed
	Categories(ctx context.Context) []catalog.Category
	Favorites(ctx context.Context) []catalog.Product
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	SubmitListing(ctx context.Context, draft catalog.ListingDraft) (catalog.Listing, error)
}

type Handler struct {
	service CatalogService
}

func NewHandler(svc CatalogService) *Handler {
	return &Handler{service: svc}
}

type errorResponse struct {
	Error string `json:"error" example:"product not found"`
}

type searchResponse struct {
	Items      []catalog.Product `json:"items"`
	Pagination paginationMeta    `json:"pagination"`
}

type paginationMeta struct {
	Page  int   `json:"page" example:"1"`
	Limit int   `json:"limit" example:"10"`
	Total int64 `json:"total" example:"8"`
}

type productsResponse struct {
	Items []catalog.Product `json:"items"`
}

type categoriesResponse struct {
	Items []catalog.Category `json:"items"`
}

type favoriteResponse struct {
	ProductID  string `json:"product_id" example:"1"`
	IsFavorite bool   `json:"is_favorite" example:"false"`
}

// SearchProducts godoc
// @Summary      Search the catalog
// @Description  Case-insensitive substring match on title, description and category, narrowed to one category unless category is All.
// @Tags         products
// @Produce      json
// @Param        q         query     string  false  "Search text"
// @Param        category  query     string  false  "Exact category name"  default(All)
// @Param        page      query     int     false  "Page number"          default(1)
// @Param        limit     query     int     false  "Items per page"       default(10)
// @Success      200       {object}  searchResponse
// @Failure      400       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /products [get]
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	category := c.DefaultQuery("category", catalog.AllCategories)
	page := parseQueryInt(c.Query("page"), defaultPage)
	limit := parseQueryInt(c.Query("limit"), defaultLimit)

	items, total, err := h.service.Search(c.Request.Context(), query, category, page, limit)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to search products"})
		return
	}

	c.JSON(http.StatusOK, searchResponse{
		Items: items,
		Pagination: paginationMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  catalog.Product
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.service.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: catalog.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// ToggleFavorite godoc
// @Summary      Request a favorite flag flip
// @Description  Reports the requested flag as an activity event. The catalog itself is not changed.
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      202  {object}  favoriteResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id}/favorite [post]
func (h *Handler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")

	isFavorite, err := h.service.ToggleFavorite(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: catalog.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to toggle favorite"})
		return
	}

	c.JSON(http.StatusAccepted, favoriteResponse{ProductID: id, IsFavorite: isFavorite})
}

// SubmitListing godoc
// @Summary      Submit a new listing
// @Description  Validates the sell form and queues the listing for review. It does not appear in search.
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        body  body      catalog.ListingDraft  true  "Listing data"
// @Success      202   {object}  catalog.Listing
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /listings [post]
func (h *Handler) SubmitListing(c *gin.Context) {
	var draft catalog.ListingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	listing, err := h.service.SubmitListing(c.Request.Context(), draft)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidListing) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to submit listing"})
		return
	}

	c.JSON(http.StatusAccepted, listing)
}

// ListCategories godoc
// @Summary      List browse categories
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  categoriesResponse
// @Router       /categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, categoriesResponse{Items: h.service.Categories(c.Request.Context())})
}

// GetFeed godoc
// @Summary      Home feed
// @Description  Featured items are the first four of the catalog, recent items the next four.
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  service.Feed
// @Router       /feed [get]
func (h *Handler) GetFeed(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Feed(c.Request.Context()))
}

// ListFavorites godoc
// @Summary      List favorite products
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  productsResponse
// @Router       /favorites [get]
func (h *Handler) ListFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, productsResponse{Items: h.service.Favorites(c.Request.Context())})
}

func parseQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
