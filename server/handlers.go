package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/salesvision/salesvision/analytics"
	"github.com/salesvision/salesvision/ingest"
	"github.com/salesvision/salesvision/report"
	"github.com/salesvision/salesvision/store"
)

// topProductsLimit bounds the product aggregations shown in charts and the
// XLSX report.
const topProductsLimit = 10

// handleUpload accepts a multipart CSV, runs ingestion synchronously, writes
// the standardized file, and records the clean collection on the session.
func (s *Server) handleUpload(c *gin.Context) {
	sessionID, sess := s.currentSession(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "no file in request"})
		return
	}
	if fileHeader.Size > s.cfg.Upload.MaxSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"status": "error", "message": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "cannot read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "cannot read upload"})
		return
	}

	uploadID := uuid.NewString()
	s.progress.start(uploadID)
	defer s.progress.finish(uploadID)

	result, err := ingest.Parse(data, fileHeader.Filename)
	if err != nil {
		s.log.WithError(err).WithField("file", fileHeader.Filename).Warn("upload rejected")
		c.JSON(ingestStatus(err), gin.H{"status": "error", "message": err.Error()})
		return
	}

	savedAs := uploadID[:8] + "_" + report.StandardizedName(fileHeader.Filename)
	if err := s.writeStandardized(savedAs, result.Records); err != nil {
		s.log.WithError(err).Error("write standardized file")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not save processed file"})
		return
	}

	if err := s.store.SaveUpload(c.Request.Context(), store.Upload{
		ID:           uploadID,
		OriginalName: fileHeader.Filename,
		SavedAs:      savedAs,
		TotalRows:    result.TotalRows,
		ValidRows:    len(result.Records),
		Dropped:      result.Dropped,
		CreatedAt:    time.Now(),
	}); err != nil {
		s.log.WithError(err).Error("save upload metadata")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not record upload"})
		return
	}

	// New upload supersedes the session's previous dataset.
	sess.UploadID = uploadID
	sess.Records = result.Records
	s.sessions.put(sessionID, sess)

	s.log.WithFields(logrus.Fields{
		"upload": uploadID,
		"file":   fileHeader.Filename,
		"valid":  len(result.Records),
	}).Info("upload processed")

	c.JSON(http.StatusOK, gin.H{
		"status":            "success",
		"message":           "file processed",
		"upload_id":         uploadID,
		"columns":           result.Columns,
		"original_filename": fileHeader.Filename,
		"saved_as":          savedAs,
		"total_rows":        result.TotalRows,
		"dropped":           result.Dropped,
	})
}

// ingestStatus maps the ingestion failure taxonomy to HTTP statuses.
func ingestStatus(err error) int {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFileType),
		errors.Is(err, ingest.ErrUnparseableFile):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrMissingRequiredColumn),
		errors.Is(err, ingest.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeStandardized(name string, records []ingest.Record) error {
	if err := os.MkdirAll(s.cfg.Upload.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.cfg.Upload.Dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteCSV(f, records)
}

// handleReport derives metrics and chart specs for the session's dataset
// and writes the XLSX report for later download.
func (s *Server) handleReport(c *gin.Context) {
	_, sess := s.currentSession(c)
	if len(sess.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "no dataset uploaded yet"})
		return
	}
	records := sess.Records

	metrics := analytics.Metrics(records)
	byDay := analytics.ByDay(records)
	byMonth := analytics.ByMonth(records)
	byRegion := analytics.ByRegion(records)
	topProducts := analytics.TopProducts(records, analytics.ByRevenue, topProductsLimit)
	avgPrices := analytics.AveragePricePerProduct(records)

	charts := make([]*analytics.ChartSpec, 0, 5)
	for _, spec := range []*analytics.ChartSpec{
		analytics.TrendChart(byMonth, analytics.PeriodMonth),
		analytics.TrendChart(byDay, analytics.PeriodDay),
		analytics.TopProductsChart(topProducts, analytics.ByRevenue),
		analytics.RegionPie(byRegion),
		analytics.AveragePriceChart(avgPrices, topProductsLimit),
	} {
		if spec != nil {
			charts = append(charts, spec)
		}
	}

	reportFile := "report_" + sess.UploadID + ".xlsx"
	if err := s.writeReport(reportFile, report.Summary{
		Title:       "Sales report",
		Metrics:     metrics,
		ByMonth:     byMonth,
		ByRegion:    byRegion,
		TopProducts: topProducts,
	}); err != nil {
		s.log.WithError(err).Error("write xlsx report")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not generate report"})
		return
	}
	if err := s.store.SetReportFile(c.Request.Context(), sess.UploadID, reportFile); err != nil {
		s.log.WithError(err).Warn("record report filename")
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"metrics":     metrics,
		"charts":      charts,
		"report_file": reportFile,
	})
}

func (s *Server) writeReport(name string, summary report.Summary) error {
	if err := os.MkdirAll(s.cfg.Upload.ResultDir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.cfg.Upload.ResultDir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteXLSX(f, summary)
}

// handleDownload serves a standardized CSV from the upload directory.
func (s *Server) handleDownload(c *gin.Context) {
	name := report.SafeFilename(c.Param("filename"))
	path := filepath.Join(s.cfg.Upload.Dir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "file not found"})
		return
	}
	c.FileAttachment(path, name)
}

// handleDownloadReport serves a generated XLSX from the result directory.
func (s *Server) handleDownloadReport(c *gin.Context) {
	raw := c.Query("filename")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "filename is required"})
		return
	}
	name := report.SafeFilename(raw)
	path := filepath.Join(s.cfg.Upload.ResultDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "report not found"})
		return
	}
	c.FileAttachment(path, name)
}
