package summary

import (
	"context"
	"fmt"
	"time"

	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"

	"golang.org/x/sync/errgroup"
)

// Source loads the raw data the summary is built from, already limited to
// what the caller may see.
type Source interface {
	StatRows(ctx context.Context, caller policy.Caller) ([]model.FeedbackStat, error)
	TopVoted(ctx context.Context, caller policy.Caller, limit int) ([]model.Feedback, error)
}

type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Compute loads both inputs concurrently and aggregates them.
func (s *Service) Compute(ctx context.Context, caller policy.Caller, days int) (*Summary, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	var (
		rows []model.FeedbackStat
		top  []model.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.source.StatRows(gctx, caller)
		if err != nil {
			return fmt.Errorf("load feedback stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		top, err = s.source.TopVoted(gctx, caller, TopLimit)
		if err != nil {
			return fmt.Errorf("load top voted feedback: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Build(s.now(), days, rows, top)
}
