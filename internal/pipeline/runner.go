// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// Runner executes survey pipelines on a bounded worker pool so several
// surveys can progress concurrently without unbounded goroutines.
type Runner struct {
	orchestrator *Orchestrator
	pool         *ants.Pool
	logger       *zap.Logger
	wg           sync.WaitGroup
}

// NewRunner builds a runner with the given concurrency. Sizes below 1 are
// clamped to 1.
func NewRunner(orchestrator *Orchestrator, size int, logger *zap.Logger) (*Runner, error) {
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return &Runner{orchestrator: orchestrator, pool: pool, logger: logger}, nil
}

// Submit schedules one survey run. The returned error covers submission
// only; run failures land on the survey record and in the logs.
func (r *Runner) Submit(ctx context.Context, survey *types.Survey) error {
	r.wg.Add(1)
	err := r.pool.Submit(func() {
		defer r.wg.Done()
		if err := r.orchestrator.Run(ctx, survey); err != nil {
			r.logger.Error("survey run failed",
				zap.String("survey_id", survey.ID),
				zap.Error(err))
		}
	})
	if err != nil {
		r.wg.Done()
		return fmt.Errorf("submitting survey %s: %w", survey.ID, err)
	}
	return nil
}

// Wait blocks until every submitted survey has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close waits for in-flight surveys and releases the pool.
func (r *Runner) Close() {
	r.wg.Wait()
	r.pool.Release()
}
