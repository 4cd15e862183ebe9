package analytics

import (
	"sort"

	"github.com/salesvision/salesvision/ingest"
)

// ============================================================================
// GROUPING — Date, Region, and Product Aggregations
// ============================================================================
// Grouping walks the collection once, bucketing record indices by key while
// preserving first-appearance order, then folds each bucket into a Group.
// Sorting is applied afterwards per aggregation:
//
//   ByDay / ByMonth    ascending by date key
//   ByRegion           descending by revenue (documented choice)
//   TopProducts        descending by the chosen criterion, limited to n
//
// Every function is deterministic: the same collection yields the same
// groups in the same order.
// ============================================================================

// groupBy buckets records by key, preserving first-appearance order.
// Records for which keyFn returns ok=false are skipped.
func groupBy(records []ingest.Record, keyFn func(ingest.Record) (string, bool)) []Group {
	buckets := make(map[string]*Group)
	order := make([]string, 0)

	for _, r := range records {
		key, ok := keyFn(r)
		if !ok {
			continue
		}
		g, exists := buckets[key]
		if !exists {
			g = &Group{Key: key, Label: key}
			buckets[key] = g
			order = append(order, key)
		}
		g.Revenue += r.Revenue()
		g.Quantity += r.Quantity
		g.Count++
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		g := buckets[key]
		g.Revenue = Round2(g.Revenue)
		groups = append(groups, *g)
	}
	return groups
}

// ByDay aggregates revenue and quantity per calendar day, ascending.
// Records without a date are excluded.
func ByDay(records []ingest.Record) []Group {
	groups := groupBy(records, func(r ingest.Record) (string, bool) {
		if !r.HasDate() {
			return "", false
		}
		return r.Date.Format("2006-01-02"), true
	})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// ByMonth aggregates revenue and quantity per YYYY-MM month, ascending.
// Records without a date are excluded.
func ByMonth(records []ingest.Record) []Group {
	groups := groupBy(records, func(r ingest.Record) (string, bool) {
		if !r.HasDate() {
			return "", false
		}
		return r.Date.Format("2006-01"), true
	})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// UnspecifiedRegion labels records whose region column was blank while
// others carried one.
const UnspecifiedRegion = "Unspecified"

// ByRegion aggregates revenue and quantity per region, descending by
// revenue. When the whole collection has no region, a single group keyed ""
// is returned; callers degenerate it to the all-categories fallback.
func ByRegion(records []ingest.Record) []Group {
	hasAny := false
	for _, r := range records {
		if r.Region != "" {
			hasAny = true
			break
		}
	}

	groups := groupBy(records, func(r ingest.Record) (string, bool) {
		if r.Region == "" {
			if !hasAny {
				return "", true
			}
			return UnspecifiedRegion, true
		}
		return r.Region, true
	})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Revenue > groups[j].Revenue })
	return groups
}

// TopProducts ranks products by revenue or quantity, descending, limited
// to n. n <= 0 means all.
func TopProducts(records []ingest.Record, by SortBy, n int) []Group {
	groups := groupBy(records, func(r ingest.Record) (string, bool) {
		return r.Product, true
	})

	sort.SliceStable(groups, func(i, j int) bool {
		if by == ByQuantity {
			return groups[i].Quantity > groups[j].Quantity
		}
		return groups[i].Revenue > groups[j].Revenue
	})

	if n > 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// AveragePricePerProduct computes the mean unit price per product,
// descending. A product sold at several prices averages across its rows.
func AveragePricePerProduct(records []ingest.Record) []ProductPrice {
	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[string]*acc)
	order := make([]string, 0)

	for _, r := range records {
		a, exists := sums[r.Product]
		if !exists {
			a = &acc{}
			sums[r.Product] = a
			order = append(order, r.Product)
		}
		a.sum += r.Price
		a.count++
	}

	prices := make([]ProductPrice, 0, len(order))
	for _, product := range order {
		a := sums[product]
		prices = append(prices, ProductPrice{
			Product:      product,
			AveragePrice: Round2(a.sum / float64(a.count)),
		})
	}
	sort.SliceStable(prices, func(i, j int) bool { return prices[i].AveragePrice > prices[j].AveragePrice })
	return prices
}

// TopProductsByRegion returns the leading n products within each region.
// Regions appear in ByRegion order (descending revenue).
func TopProductsByRegion(records []ingest.Record, by SortBy, n int) []RegionTop {
	regions := ByRegion(records)

	out := make([]RegionTop, 0, len(regions))
	for _, region := range regions {
		var subset []ingest.Record
		for _, r := range records {
			key := r.Region
			if key == "" && region.Key == UnspecifiedRegion {
				key = UnspecifiedRegion
			}
			if key == region.Key {
				subset = append(subset, r)
			}
		}
		out = append(out, RegionTop{
			Region:   region.Label,
			Products: TopProducts(subset, by, n),
		})
	}
	return out
}
