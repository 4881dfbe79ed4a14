package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"volunteermatch/internal/platform/logger"
	"volunteermatch/internal/volunteer/metrics"
	"volunteermatch/internal/volunteer/models"
)

const tracerName = "volunteermatch/volunteer/service"

// DefaultRequiredGroup is the group allowed to search for volunteers.
const DefaultRequiredGroup = "Charity"

//go:generate mockgen -source=service.go -destination=mocks/store_mock.go -package=mocks

// Store is the persistence contract the service needs: one write and one
// location query. Implementations wrap failures in sentinel.ErrStoreWrite or
// sentinel.ErrStoreQuery.
type Store interface {
	Put(ctx context.Context, item *models.Item) error
	QueryByLocation(ctx context.Context, location string) ([]*models.Item, error)
}

// Service registers volunteers and matches them to charity searches.
type Service struct {
	store         Store
	scorer        Scorer
	requiredGroup string
	newID         func() string
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithScorer replaces the default constant scorer.
func WithScorer(scorer Scorer) Option {
	return func(s *Service) {
		s.scorer = scorer
	}
}

// WithRequiredGroup overrides the group findMatches requires.
func WithRequiredGroup(group string) Option {
	return func(s *Service) {
		s.requiredGroup = group
	}
}

// WithIDGenerator overrides UUID generation for volunteer ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		scorer:        ConstantScore,
		requiredGroup: DefaultRequiredGroup,
		newID:         uuid.NewString,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
