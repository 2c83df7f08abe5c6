package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaicatering/kai/internal/common"
	"github.com/kaicatering/kai/internal/llm"
	"github.com/kaicatering/kai/internal/model"
	"github.com/kaicatering/kai/internal/prompt"
	"github.com/kaicatering/kai/internal/service"
)

// Result is the outcome of one recommendation request.
type Result struct {
	Set          model.RecommendationSet
	Dropped      int
	EmptyCatalog bool
}

// StreamResult is one element of a streaming recommendation response. The
// terminal element has Final set and carries either the complete validated
// result or the terminal error.
type StreamResult struct {
	Err    error
	Result Result
	Final  bool
}

// Service runs the recommendation pipeline: catalog snapshot, prompt
// composition, constrained generation, catalog validation. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	catalog   service.CatalogReader
	client    llm.Client
	composer  *prompt.Composer
	validator *Validator
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// NewService creates the recommendation pipeline.
func NewService(catalog service.CatalogReader, client llm.Client, composer *prompt.Composer, retryOpts service.RetryOptions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:   catalog,
		client:    client,
		composer:  composer,
		validator: NewValidator(logger),
		logger:    logger,
		retryOpts: retryOpts,
	}
}

// snapshot validates the message and reads a fresh catalog snapshot.
// Input errors are rejected before any external call.
func (s *Service) snapshot(ctx context.Context, message string) ([]model.Caterer, error) {
	if strings.TrimSpace(message) == "" {
		return nil, common.ErrEmptyMessage
	}

	caterers, err := s.catalog.ListCaterers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogFetch, err)
	}
	return caterers, nil
}

// Recommend runs the pipeline in single-shot mode.
func (s *Service) Recommend(ctx context.Context, message string) (Result, error) {
	caterers, err := s.snapshot(ctx, message)
	if err != nil {
		return Result{}, err
	}

	// An empty catalog yields an empty, valid set without a backend call.
	if len(caterers) == 0 {
		return Result{Set: emptySet(), EmptyCatalog: true}, nil
	}

	composed, err := s.composer.Build(caterers, message)
	if err != nil {
		return Result{}, err
	}

	var generated model.RecommendationSet
	err = common.WithRetry(ctx, func() error {
		var genErr error
		generated, genErr = s.client.Recommend(ctx, composed)
		return genErr
	}, s.retryOpts)
	if err != nil {
		return Result{}, err
	}

	set, dropped := s.validator.ValidateSet(generated, caterers)
	if dropped > 0 {
		s.logger.Info("filtered generation output",
			"kept", len(set.Caterers),
			"dropped", dropped)
	}
	return Result{Set: set, Dropped: dropped}, nil
}

// RecommendStream runs the pipeline in streaming mode. Every emitted
// snapshot, partial or final, is validated against the same request-scoped
// catalog snapshot before it leaves this package.
func (s *Service) RecommendStream(ctx context.Context, message string) (<-chan StreamResult, error) {
	caterers, err := s.snapshot(ctx, message)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamResult, 1)

	if len(caterers) == 0 {
		out <- StreamResult{Final: true, Result: Result{Set: emptySet(), EmptyCatalog: true}}
		close(out)
		return out, nil
	}

	composed, err := s.composer.Build(caterers, message)
	if err != nil {
		close(out)
		return nil, err
	}

	chunks, err := s.client.RecommendStream(ctx, composed)
	if err != nil {
		close(out)
		return nil, err
	}

	go func() {
		defer close(out)
		for chunk := range chunks {
			res := StreamResult{Final: chunk.Final, Err: chunk.Err}
			if chunk.Err == nil {
				set, dropped := s.validator.ValidateSet(chunk.Set, caterers)
				res.Result = Result{Set: set, Dropped: dropped}
			}
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func emptySet() model.RecommendationSet {
	return model.RecommendationSet{Caterers: []model.Recommendation{}}
}
