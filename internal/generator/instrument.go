package generator

import (
	"context"
	"strings"
	"time"

	"github.com/sakif/code-translator/internal/metrics"
)

// instrumented records latency and outcome of every call.
type instrumented struct {
	next     Generator
	provider string
	model    string
}

// Instrument wraps next so each call is reported to Prometheus.
func Instrument(next Generator, provider Provider, model string) Generator {
	return &instrumented{next: next, provider: string(provider), model: model}
}

func (g *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := g.next.Generate(ctx, prompt)
	metrics.GenerationLatency.WithLabelValues(g.provider, g.model).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case strings.TrimSpace(text) == "":
		outcome = "empty"
	}
	metrics.GenerationsTotal.WithLabelValues(g.provider, g.model, outcome).Inc()

	return text, err
}
