package assets

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/oceantrace/darkmap/internal/assets"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
