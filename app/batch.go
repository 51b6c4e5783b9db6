package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gobrix/internal/errors"
	"gobrix/internal/quality"
)

// BatchItem is one entry of a batch result. Exactly one of Prediction and
// Error is set.
type BatchItem struct {
	Index      int         `json:"index"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
}

// BatchPredictor fans predictions out over a bounded worker group.
type BatchPredictor struct {
	predictions *PredictionService
	concurrency int
	maxItems    int
}

// NewBatchPredictor creates a batch runner.
func NewBatchPredictor(predictions *PredictionService, concurrency, maxItems int) *BatchPredictor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchPredictor{predictions: predictions, concurrency: concurrency, maxItems: maxItems}
}

// Predict runs every input. Per-item failures are reported in place;
// only cancellation aborts the batch.
func (b *BatchPredictor) Predict(ctx context.Context, inputs []quality.Input) ([]BatchItem, error) {
	if b.maxItems > 0 && len(inputs) > b.maxItems {
		return nil, errors.InvalidInput(fmt.Sprintf("batch of %d exceeds limit of %d", len(inputs), b.maxItems))
	}

	items := make([]BatchItem, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			items[i].Index = i
			p, err := b.predictions.Predict(gCtx, in)
			if err != nil {
				items[i].Error = err.Error()
				items[i].Code = errors.GetCode(err)
				return nil
			}
			items[i].Prediction = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
