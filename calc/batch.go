package calc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// BatchEntry is the outcome of one operation in a batch.
type BatchEntry struct {
	Operation       Operation        `json:"operation"`
	Label           string           `json:"label"`
	Success         bool             `json:"success"`
	Result          *OperationResult `json:"result,omitempty"`
	Error           string           `json:"error,omitempty"`
	ErrorKind       Kind             `json:"errorKind,omitempty"`
	ExecutionTimeMs float64          `json:"executionTimeMs"`
}

// BatchResult holds every entry of one calculate-all run.
type BatchResult struct {
	ID      uuid.UUID    `json:"id"`
	Input   string       `json:"input"`
	Entries []BatchEntry `json:"entries"`
}

// CalculateAll runs ops (all operations when empty) sequentially against
// req. A failing operation becomes an entry with its error; the batch always
// completes.
func (o *Orchestrator) CalculateAll(ctx context.Context, req Request, ops []Operation) *BatchResult {
	if len(ops) == 0 {
		ops = AllOperations
	}
	batch := &BatchResult{ID: uuid.New(), Input: req.Input, Entries: make([]BatchEntry, 0, len(ops))}
	ctx, span := o.tracer.Start(ctx, "calc.calculate_all")
	defer span.End()
	span.SetAttributes(
		attribute.String("calc.batch_id", batch.ID.String()),
		attribute.Int("calc.operations", len(ops)),
	)

	var total time.Duration
	succeeded := 0
	for _, op := range ops {
		start := time.Now()
		res, err := o.Run(ctx, op, req)
		elapsed := time.Since(start)
		total += elapsed

		entry := BatchEntry{
			Operation:       op,
			Label:           OperationLabels[op],
			ExecutionTimeMs: float64(elapsed.Microseconds()) / 1000,
		}
		if err != nil {
			entry.Error = err.Error()
			entry.ErrorKind = KindEngineFailure
			var ce *Error
			if errors.As(err, &ce) {
				entry.ErrorKind = ce.Kind
			}
		} else {
			entry.Success = true
			entry.Result = res
			succeeded++
		}
		batch.Entries = append(batch.Entries, entry)
	}

	o.logger.InfoContext(ctx, "batch complete",
		"batch_id", batch.ID.String(),
		"operations", len(ops),
		"succeeded", succeeded,
		"failed", len(ops)-succeeded,
		"total_ms", float64(total.Microseconds())/1000,
	)
	return batch
}
