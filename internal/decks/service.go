package decks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/composition"
	"github.com/ramonehamilton/mana-tomb/internal/metrics"
	"github.com/ramonehamilton/mana-tomb/internal/storage"
	"github.com/ramonehamilton/mana-tomb/internal/storage/models"
)

// defaultCacheSize bounds the number of cached (deck, board) compositions.
const defaultCacheSize = 1024

// EventPublisher delivers deck events to connected clients. An empty userID
// addresses every client. *events.EventDispatcher implements it.
type EventPublisher interface {
	Publish(eventType, userID string, data any)
}

// CardFetcher resolves a card that is not yet in the local cache.
type CardFetcher interface {
	FetchCard(ctx context.Context, id string) (*models.Card, error)
}

// Service is the facade between the HTTP handlers and storage.
type Service struct {
	store   *storage.Service
	cache   *composition.Cache
	events  EventPublisher
	fetcher CardFetcher
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithEventPublisher sets where deck update events are sent.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithCardFetcher sets the fallback used when adding a card by ID that has
// not been cached yet.
func WithCardFetcher(f CardFetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics records composition cache hits and misses.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCacheSize bounds the composition cache.
func WithCacheSize(n int) Option {
	return func(s *Service) { s.cache = composition.NewCache(n) }
}

// NewService creates a deck service over store.
func NewService(store *storage.Service, opts ...Option) *Service {
	s := &Service{
		store: store,
		cache: composition.NewCache(defaultCacheSize),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *Service) publish(eventType, userID string, data any) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventType, userID, data)
}
