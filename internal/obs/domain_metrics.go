package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationsTotal counts cart mutations by operation.
	CartMutationsTotal *prometheus.CounterVec
	// QuotesComputedTotal counts standalone pricing quotes.
	QuotesComputedTotal prometheus.Counter
	// OrdersPlacedTotal counts successful checkouts.
	OrdersPlacedTotal prometheus.Counter
	// OrderWebhookTotal tracks order-created webhook delivery outcomes.
	OrderWebhookTotal *prometheus.CounterVec
	// CatalogCacheTotal counts catalog cache lookups by result.
	CatalogCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"})
		QuotesComputedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_computed_total",
			Help:      "Count of pricing quotes computed outside a cart.",
		})
		OrdersPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Count of orders placed through checkout.",
		})
		OrderWebhookTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_webhook_total",
			Help:      "Count of order webhook delivery outcomes.",
		}, []string{"result"})
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Count of catalog cache lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, CartMutationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartMutationsTotal = v
			}
		})
		mustRegisterCollector(reg, QuotesComputedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				QuotesComputedTotal = v
			}
		})
		mustRegisterCollector(reg, OrdersPlacedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				OrdersPlacedTotal = v
			}
		})
		mustRegisterCollector(reg, OrderWebhookTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderWebhookTotal = v
			}
		})
		mustRegisterCollector(reg, CatalogCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CatalogCacheTotal = v
			}
		})
	})
}

// IncCartMutation records a cart mutation. Safe before registration.
func IncCartMutation(op string) {
	if CartMutationsTotal != nil {
		CartMutationsTotal.WithLabelValues(op).Inc()
	}
}

// IncQuoteComputed records a standalone pricing quote.
func IncQuoteComputed() {
	if QuotesComputedTotal != nil {
		QuotesComputedTotal.Inc()
	}
}

// IncOrderPlaced records a completed checkout.
func IncOrderPlaced() {
	if OrdersPlacedTotal != nil {
		OrdersPlacedTotal.Inc()
	}
}

// IncOrderWebhook records an order webhook delivery outcome.
func IncOrderWebhook(result string) {
	if OrderWebhookTotal != nil {
		OrderWebhookTotal.WithLabelValues(result).Inc()
	}
}

// IncCatalogCache records a catalog cache lookup outcome.
func IncCatalogCache(result string) {
	if CatalogCacheTotal != nil {
		CatalogCacheTotal.WithLabelValues(result).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
