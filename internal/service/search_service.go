package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
	"github.com/driftportal/facility-api/internal/store"
	"github.com/driftportal/facility-api/internal/views"
)

// ServerSearchLimit caps each collection in a server-side search
const ServerSearchLimit = 5

type SearchService struct {
	stores *store.Stores
	src    *repository.Source
}

func NewSearchService(stores *store.Stores, src *repository.Source) *SearchService {
	return &SearchService{stores: stores, src: src}
}

// Snapshot searches the cached collections. Queries shorter than
// views.MinQueryLength return no hits.
func (s *SearchService) Snapshot(query string, types []views.ResultType) ([]views.SearchResult, error) {
	for _, t := range types {
		if !t.IsValid() {
			return nil, invalid("unknown result type %q", t)
		}
	}
	return views.SearchSnapshots(
		query,
		types,
		s.stores.Cases.Snapshot(),
		s.stores.Tasks.Snapshot(),
		s.stores.Plans.Snapshot(),
	), nil
}

// Server queries the backend directly, at most ServerSearchLimit hits per
// collection including properties
func (s *SearchService) Server(ctx context.Context, query string) (*domain.ServerSearchResponse, error) {
	resp := &domain.ServerSearchResponse{
		Cases:       []domain.Case{},
		Tasks:       []domain.Task{},
		Maintenance: []domain.MaintenancePlan{},
		Properties:  []domain.Property{},
	}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < views.MinQueryLength {
		return resp, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.src.Cases.Search(ctx, query, ServerSearchLimit)
		if err != nil {
			return fmt.Errorf("failed to search cases: %w", err)
		}
		resp.Cases = items
		return nil
	})
	g.Go(func() error {
		items, err := s.src.Tasks.Search(ctx, query, ServerSearchLimit)
		if err != nil {
			return fmt.Errorf("failed to search tasks: %w", err)
		}
		resp.Tasks = items
		return nil
	})
	g.Go(func() error {
		items, err := s.src.Plans.Search(ctx, query, ServerSearchLimit)
		if err != nil {
			return fmt.Errorf("failed to search maintenance plans: %w", err)
		}
		resp.Maintenance = items
		return nil
	})
	g.Go(func() error {
		items, err := s.src.Properties.Search(ctx, query, ServerSearchLimit)
		if err != nil {
			return fmt.Errorf("failed to search properties: %w", err)
		}
		resp.Properties = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}
