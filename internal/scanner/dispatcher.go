package scanner

import (
	"context"
	"log"
	"strings"

	"solana-momentum-lab/internal/domain"
)

// Dispatcher delivers emitted signals to a downstream consumer.
type Dispatcher interface {
	Dispatch(ctx context.Context, signals []*domain.Signal) error
}

// LogDispatcher writes emitted signals to the logger. It is the default
// dispatcher when no downstream consumer is configured.
type LogDispatcher struct {
	logger *log.Logger
}

// NewLogDispatcher creates a dispatcher that logs signals.
func NewLogDispatcher(logger *log.Logger) *LogDispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &LogDispatcher{logger: logger}
}

// Dispatch logs one line per signal with its factor breakdown.
func (d *LogDispatcher) Dispatch(_ context.Context, signals []*domain.Signal) error {
	for _, s := range signals {
		var factors []string
		for _, f := range s.Factors {
			factors = append(factors, f.Name)
		}
		d.logger.Printf("signal %s %s score=%.1f strategy=%s factors=%s",
			s.Symbol, s.TokenAddress, s.Score, s.Strategy, strings.Join(factors, ","))
	}
	return nil
}
