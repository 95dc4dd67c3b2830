// Package service exposes typed CRUD operations over the record
// collections, composing the store's constraint checks, idempotent writes,
// and paginated scans. Transport adapters call into this package; request
// parsing and routing live outside the core.
package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/crct-xyz/api/store"
)

// Service wraps a Store with per-entity operations.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Service. A nil logger falls back to slog.Default.
func New(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Store returns the underlying store.
func (s *Service) Store() *store.Store { return s.store }

// marshalAttr converts a typed value into a single attribute value for a
// partial-update delta.
func marshalAttr(v any) (types.AttributeValue, error) {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("service: marshal update field: %w", err)
	}
	return av, nil
}
