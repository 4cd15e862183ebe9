package analytics

import "fmt"

// ============================================================================
// CHART BUILDER — Produces ChartSpecs from Aggregated Groups
// ============================================================================

// Default color palette for chart series and pie slices.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Period selects the x-axis granularity of a trend chart.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// AllCategories is the single slice shown when no region data exists.
const AllCategories = "All categories"

// othersShareThreshold folds regions below this revenue share into one
// "Others" slice so the pie stays readable.
const othersShareThreshold = 0.05

// TrendChart builds a revenue-over-time line chart from day or month groups
// (already ascending). Returns nil when there is nothing to plot.
func TrendChart(groups []Group, period Period) *ChartSpec {
	if len(groups) == 0 {
		return nil
	}

	title := "Revenue by month"
	xAxis := "Month"
	if period == PeriodDay {
		title = "Revenue by day"
		xAxis = "Date"
	}

	points := make([]Point, 0, len(groups))
	for _, g := range groups {
		points = append(points, Point{Label: g.Label, Value: Round2(g.Revenue)})
	}

	return &ChartSpec{
		Type:     "line",
		Title:    title,
		XAxis:    xAxis,
		YAxis:    "Revenue",
		Series:   []Series{{Name: "Revenue", Data: points, Color: defaultColors[0]}},
		Colors:   defaultColors[:1],
		ShowGrid: true,
	}
}

// TopProductsChart builds a horizontal bar chart of leading products.
func TopProductsChart(groups []Group, by SortBy) *ChartSpec {
	if len(groups) == 0 {
		return nil
	}

	title := fmt.Sprintf("Top %d products by revenue", len(groups))
	yAxis := "Revenue"
	if by == ByQuantity {
		title = fmt.Sprintf("Top %d products by units sold", len(groups))
		yAxis = "Units"
	}

	points := make([]Point, 0, len(groups))
	for _, g := range groups {
		v := g.Revenue
		if by == ByQuantity {
			v = g.Quantity
		}
		points = append(points, Point{Label: g.Label, Value: Round2(v)})
	}

	return &ChartSpec{
		Type:       "hbar",
		Title:      title,
		XAxis:      "Product",
		YAxis:      yAxis,
		Series:     []Series{{Name: yAxis, Data: points}},
		Colors:     assignColors(len(points)),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// RegionPie builds a revenue-share pie from region groups (already
// descending by revenue). Regions below the share threshold fold into an
// "Others" slice. A collection with no region at all degenerates to a
// single "All categories" slice instead of an empty chart.
func RegionPie(groups []Group) *ChartSpec {
	if len(groups) == 0 {
		return nil
	}

	// Entirely absent region: the degenerate fallback chart.
	if len(groups) == 1 && groups[0].Key == "" {
		return &ChartSpec{
			Type:       "pie",
			Title:      "Revenue by region",
			Series:     []Series{{Name: "Revenue", Data: []Point{{Label: AllCategories, Value: Round2(groups[0].Revenue)}}}},
			Colors:     defaultColors[:1],
			ShowLegend: true,
		}
	}

	var total float64
	for _, g := range groups {
		total += g.Revenue
	}

	var points []Point
	var othersSum float64
	for _, g := range groups {
		if total > 0 && g.Revenue/total < othersShareThreshold {
			othersSum += g.Revenue
			continue
		}
		points = append(points, Point{Label: g.Label, Value: Round2(g.Revenue)})
	}
	if othersSum > 0 {
		points = append(points, Point{Label: "Others", Value: Round2(othersSum)})
	}

	return &ChartSpec{
		Type:       "pie",
		Title:      "Revenue by region",
		Series:     []Series{{Name: "Revenue", Data: points}},
		Colors:     assignColors(len(points)),
		ShowLegend: true,
	}
}

// AveragePriceChart builds a bar chart of per-product average prices,
// limited to top entries.
func AveragePriceChart(prices []ProductPrice, top int) *ChartSpec {
	if len(prices) == 0 {
		return nil
	}
	if top > 0 && len(prices) > top {
		prices = prices[:top]
	}

	points := make([]Point, 0, len(prices))
	for _, p := range prices {
		points = append(points, Point{Label: p.Product, Value: p.AveragePrice})
	}

	return &ChartSpec{
		Type:     "bar",
		Title:    "Average price per product",
		XAxis:    "Product",
		YAxis:    "Average price",
		Series:   []Series{{Name: "Average price", Data: points}},
		Colors:   assignColors(len(points)),
		ShowGrid: true,
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
