package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cardkraft/backend-cards/internal/cart"
	"github.com/cardkraft/backend-cards/internal/common"
)

type store interface {
	List(ctx context.Context, f ListFilter) ([]Product, int64, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
}

// Service orchestrates product queries, caching, and the pricing lookup the
// cart depends on.
type Service struct {
	repo         store
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Repo         store
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []Product
	Total int64
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repo == nil {
		return nil, errors.New("catalog: repo is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		repo:         cfg.Repo,
		cache:        cfg.Cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details:    map[string]any{"field": field},
	}
}

// ParseListFilter normalises raw query values into strongly typed filters.
func (s *Service) ParseListFilter(values url.Values) (ListFilter, error) {
	f := ListFilter{
		Page:  1,
		Limit: s.defaultLimit,
	}
	f.Query = strings.TrimSpace(values.Get("q"))
	f.Category = strings.TrimSpace(values.Get("category"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return f, badRequest("page", "page must be a positive integer", err)
		}
		f.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return f, badRequest("limit", "limit must be a positive integer", err)
		}
		f.Limit = limit
	}
	if f.Limit > s.maxLimit {
		f.Limit = s.maxLimit
	}

	if v := strings.TrimSpace(values.Get("minPrice")); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return f, badRequest("minPrice", "minPrice must be a valid number", err)
		}
		f.MinPrice = &parsed
	}
	if v := strings.TrimSpace(values.Get("maxPrice")); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return f, badRequest("maxPrice", "maxPrice must be a valid number", err)
		}
		f.MaxPrice = &parsed
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, badRequest("price", "minPrice cannot be greater than maxPrice", fmt.Errorf("invalid price range"))
	}

	switch sort := strings.TrimSpace(values.Get("sort")); sort {
	case "", "newest":
		f.Sort = ""
	case "price_asc", "price_desc", "name":
		f.Sort = sort
	default:
		return f, badRequest("sort", "sort must be one of newest, price_asc, price_desc, name", nil)
	}
	return f, nil
}

type cachedList struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
}

func (s *Service) listCacheKey(f ListFilter) (string, bool) {
	// Only the unfiltered storefront landing pages are cached; filtered
	// queries have too many key shapes to be worth keeping warm.
	if f.Query != "" || f.Category != "" || f.MinPrice != nil || f.MaxPrice != nil || f.Sort != "" {
		return "", false
	}
	return fmt.Sprintf("catalog:list:p%d:l%d", f.Page, f.Limit), true
}

// List returns filtered products with pagination metadata.
func (s *Service) List(ctx context.Context, f ListFilter) (ListResult, error) {
	key, cacheable := s.listCacheKey(f)
	if cacheable {
		var cached cachedList
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return ListResult{Items: cached.Items, Total: cached.Total, Page: f.Page, Limit: f.Limit}, nil
		}
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return ListResult{}, err
	}
	if cacheable {
		_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	}
	return ListResult{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Get loads one product by slug, consulting the cache first.
func (s *Service) Get(ctx context.Context, slug string) (Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Product{}, ErrNotFound
	}
	key := "catalog:product:" + slug
	var cached Product
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.SetJSON(ctx, key, p)
	return p, nil
}

// GetForPricing resolves the product reference the cart needs. A missing or
// inactive product reports found=false rather than an error.
func (s *Service) GetForPricing(ctx context.Context, productID string) (cart.ProductRef, bool, error) {
	key := "catalog:ref:" + productID
	var cached Product
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return toRef(cached), true, nil
	}
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return cart.ProductRef{}, false, nil
		}
		return cart.ProductRef{}, false, err
	}
	_ = s.cache.SetJSON(ctx, key, p)
	return toRef(p), true, nil
}

func toRef(p Product) cart.ProductRef {
	return cart.ProductRef{
		ID:        p.ID,
		Name:      p.Name,
		BasePrice: p.BasePrice,
		Category:  p.Category,
	}
}
