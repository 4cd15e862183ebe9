package analytics

// ============================================================================
// ANALYTICS TYPES — Metrics, Groups, Chart Specs
// ============================================================================
// The derivation stage is a pure function of the normalized record
// collection: metrics for the summary table, groups as the intermediate
// aggregation result, and chart specs as render-ready output for the
// frontend. No I/O happens in this package.
// ============================================================================

// Metric is a single named aggregate value for display. Display is the
// pre-formatted rendering of Value (thousands separators, two decimals
// unless Integer).
type Metric struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Integer bool    `json:"integer"` // render without decimals
}

// Group is one aggregation bucket: a day, a month, a region, or a product.
type Group struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Revenue  float64 `json:"revenue"`
	Quantity float64 `json:"quantity"`
	Count    int     `json:"count"`
}

// ProductPrice is the average unit price of one product.
type ProductPrice struct {
	Product      string  `json:"product"`
	AveragePrice float64 `json:"averagePrice"`
}

// RegionTop holds the leading products for one region.
type RegionTop struct {
	Region   string  `json:"region"`
	Products []Group `json:"products"`
}

// ChartSpec defines how to render a chart.
type ChartSpec struct {
	Type       string   `json:"chartType"` // "line", "bar", "hbar", "pie"
	Title      string   `json:"title"`
	XAxis      string   `json:"xAxis,omitempty"`
	YAxis      string   `json:"yAxis,omitempty"`
	Series     []Series `json:"series"`
	Colors     []string `json:"colors,omitempty"`
	ShowLegend bool     `json:"showLegend"`
	ShowGrid   bool     `json:"showGrid"`
}

// Series is a data series in a chart.
type Series struct {
	Name  string  `json:"name"`
	Data  []Point `json:"data"`
	Color string  `json:"color,omitempty"`
}

// Point is a single data point.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SortBy selects the ranking criterion for product aggregations.
type SortBy string

const (
	ByRevenue  SortBy = "revenue"
	ByQuantity SortBy = "quantity"
)
