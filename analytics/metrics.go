package analytics

import (
	"sort"

	"github.com/salesvision/salesvision/ingest"
)

// ============================================================================
// METRICS — Fixed Descriptive Aggregates
// ============================================================================

// Metrics computes the fixed metric set for a record collection.
// Ingestion guarantees non-emptiness when this runs, but every division is
// still guarded: an empty collection yields zero-valued metrics, not an
// error.
func Metrics(records []ingest.Record) []Metric {
	var revenue, units, priceSum float64
	for _, r := range records {
		revenue += r.Revenue()
		units += r.Quantity
		priceSum += r.Price
	}

	avgPrice := 0.0
	if len(records) > 0 {
		avgPrice = priceSum / float64(len(records))
	}

	return []Metric{
		metric("total_revenue", revenue, false),
		metric("total_units", units, true),
		metric("average_price", avgPrice, false),
		metric("median_price", medianPrice(records), false),
		metric("record_count", float64(len(records)), true),
	}
}

// metric assembles one Metric: rounded value, label derived from the key,
// and the pre-formatted display string.
func metric(key string, value float64, integer bool) Metric {
	value = Round2(value)
	return Metric{
		Key:     key,
		Label:   DisplayLabel(key),
		Value:   value,
		Display: FormatValue(value, integer),
		Integer: integer,
	}
}

func medianPrice(records []ingest.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	prices := make([]float64, len(records))
	for i, r := range records {
		prices[i] = r.Price
	}
	sort.Float64s(prices)

	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		return prices[mid]
	}
	return (prices[mid-1] + prices[mid]) / 2
}
