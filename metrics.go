package catscan

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/poiesic/catscan"

// engineMetrics holds the engine's instruments. With no MeterProvider
// installed the global no-op provider makes every call free.
type engineMetrics struct {
	checks     metric.Int64Counter
	matches    metric.Int64Counter
	suppressed metric.Int64Counter
	refreshes  metric.Int64Counter
}

func newEngineMetrics(provider metric.MeterProvider) (*engineMetrics, error) {
	meter := provider.Meter(meterName)

	checks, err := meter.Int64Counter("catscan.page.checks",
		metric.WithDescription("Page checks by strategy and result"))
	if err != nil {
		return nil, err
	}
	matches, err := meter.Int64Counter("catscan.page.matches",
		metric.WithDescription("Entries surfaced to the user"))
	if err != nil {
		return nil, err
	}
	suppressed, err := meter.Int64Counter("catscan.page.suppressed",
		metric.WithDescription("Matched entries dropped by mute or hide"))
	if err != nil {
		return nil, err
	}
	refreshes, err := meter.Int64Counter("catscan.dataset.refreshes",
		metric.WithDescription("Dataset refresh attempts by result"))
	if err != nil {
		return nil, err
	}

	return &engineMetrics{
		checks:     checks,
		matches:    matches,
		suppressed: suppressed,
		refreshes:  refreshes,
	}, nil
}

func (m *engineMetrics) recordCheck(ctx context.Context, report *Report) {
	result := "none"
	switch {
	case report.Skipped != SkipNone:
		result = "skipped:" + string(report.Skipped)
	case !report.Pages.Empty():
		result = "found"
	}
	m.checks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", report.Strategy),
		attribute.String("result", result),
	))
	if n := report.Pages.Len(); n > 0 {
		m.matches.Add(ctx, int64(n))
	}
	if report.Suppressed > 0 {
		m.suppressed.Add(ctx, int64(report.Suppressed))
	}
}

func (m *engineMetrics) recordRefresh(ctx context.Context, result string) {
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
