package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cardkraft/backend-cards/internal/catalog"
)

type fakeStore struct {
	products    []catalog.Product
	listCalls   int
	bySlugCalls int
	byIDCalls   int
}

func (f *fakeStore) List(_ context.Context, filter catalog.ListFilter) ([]catalog.Product, int64, error) {
	f.listCalls++
	limit := filter.Limit
	if limit > len(f.products) {
		limit = len(f.products)
	}
	return f.products[:limit], int64(len(f.products)), nil
}

func (f *fakeStore) GetBySlug(_ context.Context, slug string) (catalog.Product, error) {
	f.bySlugCalls++
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id string) (catalog.Product, error) {
	f.byIDCalls++
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func sampleProducts() []catalog.Product {
	now := time.Now().UTC()
	return []catalog.Product{
		{ID: "11111111-1111-1111-1111-111111111111", Slug: "classic-matt", Name: "Classic Matt", Category: "business-cards", BasePrice: decimal.NewFromInt(499), Active: true, CreatedAt: now, UpdatedAt: now},
		{ID: "22222222-2222-2222-2222-222222222222", Slug: "luxe-cotton", Name: "Luxe Cotton", Category: "business-cards", BasePrice: decimal.NewFromInt(799), Active: true, CreatedAt: now, UpdatedAt: now},
	}
}

func newTestService(t *testing.T, store *fakeStore) *catalog.Service {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	svc, err := catalog.NewService(catalog.ServiceConfig{
		Repo:  store,
		Cache: catalog.NewCache(rdb, time.Minute),
	})
	require.NoError(t, err)
	return svc
}

func TestParseListFilter(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	filter, err := svc.ParseListFilter(url.Values{"q": {" matt "}, "page": {"2"}, "limit": {"10"}, "sort": {"price_asc"}})
	require.NoError(t, err)
	require.Equal(t, "matt", filter.Query)
	require.Equal(t, 2, filter.Page)
	require.Equal(t, 10, filter.Limit)
	require.Equal(t, "price_asc", filter.Sort)

	_, err = svc.ParseListFilter(url.Values{"page": {"0"}})
	require.Error(t, err)
	_, err = svc.ParseListFilter(url.Values{"minPrice": {"abc"}})
	require.Error(t, err)
	_, err = svc.ParseListFilter(url.Values{"minPrice": {"500"}, "maxPrice": {"100"}})
	require.Error(t, err)
	_, err = svc.ParseListFilter(url.Values{"sort": {"sideways"}})
	require.Error(t, err)
}

func TestListCachesUnfilteredPage(t *testing.T) {
	store := &fakeStore{products: sampleProducts()}
	svc := newTestService(t, store)

	first, err := svc.List(context.Background(), catalog.ListFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, int64(2), first.Total)
	require.Equal(t, 1, store.listCalls)

	second, err := svc.List(context.Background(), catalog.ListFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, first.Total, second.Total)
	require.Equal(t, 1, store.listCalls, "second unfiltered page should come from cache")

	_, err = svc.List(context.Background(), catalog.ListFilter{Page: 1, Limit: 20, Query: "matt"})
	require.NoError(t, err)
	require.Equal(t, 2, store.listCalls, "filtered queries bypass the cache")
}

func TestGetCachesBySlug(t *testing.T) {
	store := &fakeStore{products: sampleProducts()}
	svc := newTestService(t, store)

	p, err := svc.Get(context.Background(), "classic-matt")
	require.NoError(t, err)
	require.Equal(t, "Classic Matt", p.Name)

	_, err = svc.Get(context.Background(), "classic-matt")
	require.NoError(t, err)
	require.Equal(t, 1, store.bySlugCalls)

	_, err = svc.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestGetForPricing(t *testing.T) {
	store := &fakeStore{products: sampleProducts()}
	svc := newTestService(t, store)

	ref, found, err := svc.GetForPricing(context.Background(), "11111111-1111-1111-1111-111111111111")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Classic Matt", ref.Name)
	require.True(t, ref.BasePrice.Equal(decimal.NewFromInt(499)))

	_, found, err = svc.GetForPricing(context.Background(), "33333333-3333-3333-3333-333333333333")
	require.NoError(t, err)
	require.False(t, found)
}

func TestProductsEndpoint(t *testing.T) {
	store := &fakeStore{products: sampleProducts()}
	svc := newTestService(t, store)
	handler := &catalog.Handler{Service: svc}

	r := chi.NewRouter()
	r.Get("/products", handler.Products)
	r.Get("/products/{slug}", handler.ProductDetail)
	r.Get("/options", handler.Options)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2", rec.Header().Get("X-Total-Count"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?page=-1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/ghost", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/options", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "quantityTiers")
}
