package engineobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"atr-trader/internal/engine"
	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/trace"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Cycle(ctx context.Context) (*interfaces.CycleResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Cycle")
	defer span.End()

	cycleID := uuid.NewString()
	span.SetAttributes(attribute.String("cycle_id", cycleID))

	start := time.Now()

	result, err := oe.engine.Cycle(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trading cycle failed", err,
			"cycle_id", cycleID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	// Waiting cycles happen every second while producers are idle; keep
	// them out of the INFO stream.
	if result.State == engine.StateWaiting {
		return result, nil
	}

	logger.InfoSkip(ctx, 1, "Trading cycle completed",
		"cycle_id", cycleID,
		"symbol", result.Symbol,
		"state", result.State,
		"reason", result.Reason,
		"allowed", result.Gate.Allowed,
		"quantity", result.Sizing.Quantity,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
