// Package salesvision is a small sales analytics web application.
//
// A user uploads a CSV of sales records, the ingest package matches the
// header against a multilingual alias table and produces clean records,
// the analytics package derives metrics and chart specifications, and the
// report package writes a standardized CSV plus a formatted XLSX report.
//
// Usage:
//
//	import "github.com/salesvision/salesvision/ingest"
//	import "github.com/salesvision/salesvision/analytics"
//
//	result, err := ingest.Parse(csvBytes, "sales.csv")
//	metrics := analytics.Metrics(result.Records)
//	chart := analytics.TrendChart(analytics.ByMonth(result.Records), analytics.PeriodMonth)
//
// The HTTP layer in server/ wires these stages behind upload, report,
// progress, and download endpoints. All computation is local; no external
// service is ever called.
package salesvision
