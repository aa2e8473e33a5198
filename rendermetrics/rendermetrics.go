// Package rendermetrics records opencensus measurements about render
// progress.  Nothing is exported until the views are registered.
package rendermetrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	passLatency = stats.Float64("lumen/pass_latency", "Wall time of one full-frame pass", stats.UnitMilliseconds)
	passSamples = stats.Int64("lumen/pass_samples", "Camera rays traced in one pass", stats.UnitDimensionless)
	writes      = stats.Int64("lumen/writes", "Image and checkpoint writes", stats.UnitDimensionless)

	// KeyKind distinguishes image writes from checkpoint writes.
	KeyKind = tag.MustNewKey("kind")

	// KeyResult is "ok" or "error".
	KeyResult = tag.MustNewKey("result")
)

var (
	PassCountView = &view.View{
		Name:        "lumen/passes",
		Description: "Counter of completed passes",
		Measure:     passLatency,
		Aggregation: view.Count(),
	}

	PassLatencyView = &view.View{
		Name:        "lumen/pass_latency",
		Description: "Distribution of pass wall time",
		Measure:     passLatency,
		Aggregation: view.Distribution(10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000),
	}

	PassSamplesView = &view.View{
		Name:        "lumen/samples",
		Description: "Sum of camera rays traced",
		Measure:     passSamples,
		Aggregation: view.Sum(),
	}

	WriteCountView = &view.View{
		Name:        "lumen/writes",
		Description: "Counter of image and checkpoint writes",
		TagKeys:     []tag.Key{KeyKind, KeyResult},
		Measure:     writes,
		Aggregation: view.Count(),
	}
)

// Views returns every view this package defines.
func Views() []*view.View {
	return []*view.View{PassCountView, PassLatencyView, PassSamplesView, WriteCountView}
}

func RegisterViews() error {
	return view.Register(Views()...)
}

func UnregisterViews() {
	view.Unregister(Views()...)
}

// RecordPass records one completed pass that traced samples camera rays.
func RecordPass(ctx context.Context, elapsed time.Duration, samples int64) {
	stats.Record(ctx,
		passLatency.M(float64(elapsed)/float64(time.Millisecond)),
		passSamples.M(samples))
}

// RecordWrite records an attempt to write output of the given kind.
func RecordWrite(ctx context.Context, kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	stats.RecordWithOptions(
		ctx,
		stats.WithTags(
			tag.Insert(KeyKind, kind),
			tag.Insert(KeyResult, result),
		),
		stats.WithMeasurements(writes.M(1)))
}
