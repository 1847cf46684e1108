package ui

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"airsense/adapters/stats/temporal"
	"airsense/domain/core"
	"airsense/domain/datareadiness/ingestion"
	"airsense/domain/telemetry"
	"airsense/internal/airquality"
	apperrors "airsense/internal/errors"
	"airsense/internal/pipeline"

	"github.com/gin-gonic/gin"
)

type seriesResponse struct {
	*pipeline.Result
	Filtered *telemetry.CanonicalSeries `json:"filtered,omitempty"`
}

type analysisResponse struct {
	RunID       core.RunID                `json:"run_id"`
	Source      string                    `json:"source,omitempty"`
	Detection   telemetry.DetectionResult `json:"detection"`
	Diagnostics telemetry.Diagnostics     `json:"diagnostics"`
	Warnings    []telemetry.Warning       `json:"warnings,omitempty"`
	Fingerprint core.SeriesHash           `json:"fingerprint"`
	Analysis    *airquality.Analysis      `json:"analysis"`
}

func (s *Server) handleIndex(c *gin.Context) {
	th := s.analyzer.Thresholds()
	data := gin.H{
		"Formats":      "CSV, CSV.GZ, XLSX",
		"MaxUploadMB":  s.cfg.Server.MaxUploadMB,
		"Good":         th.Good,
		"Warn":         th.Warn,
		"DefaultAlert": th.DefaultAlertThreshold(),
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(c.Writer, "index.html", data); err != nil {
		log.Printf("[Server] index template failed: %v", err)
		c.Status(http.StatusInternalServerError)
	}
}

// handleSeries returns the canonical series. Optional above/below form
// values add a filtered copy next to it.
func (s *Server) handleSeries(c *gin.Context) {
	above, err := optionalFloat(c, "above")
	if err != nil {
		s.writeError(c, err, nil, nil)
		return
	}
	below, err := optionalFloat(c, "below")
	if err != nil {
		s.writeError(c, err, nil, nil)
		return
	}

	table, result, err := s.process(c)
	if err != nil {
		s.writeError(c, err, result, table)
		return
	}

	resp := seriesResponse{Result: result}
	if above != nil || below != nil {
		filtered := result.Series
		if above != nil {
			filtered = airquality.FilterAbove(filtered, *above)
		}
		if below != nil {
			filtered = airquality.FilterBelow(filtered, *below)
		}
		resp.Filtered = &filtered
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAnalysis(c *gin.Context) {
	result, analysis, ok := s.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysisResponse{
		RunID:       result.RunID,
		Source:      result.Source,
		Detection:   result.Detection,
		Diagnostics: result.Diagnostics,
		Warnings:    result.Warnings,
		Fingerprint: result.Fingerprint,
		Analysis:    analysis,
	})
}

// handleReport renders the report as html (default), markdown or json
func (s *Server) handleReport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "html"))
	if format != "html" && format != "markdown" && format != "json" {
		s.writeError(c, apperrors.InvalidInput(fmt.Sprintf("unknown report format %q", format)), nil, nil)
		return
	}

	result, analysis, ok := s.analyze(c)
	if !ok {
		return
	}
	report := airquality.RenderReport(airquality.ReportInput{
		Source:      result.Source,
		Detection:   result.Detection,
		Diagnostics: result.Diagnostics,
		Warnings:    result.Warnings,
		Analysis:    analysis,
	})

	switch format {
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown))
	case "json":
		c.JSON(http.StatusOK, report)
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(report.HTML))
	}
}

// analyze runs the pipeline then the air quality analysis, writing the error
// response itself on failure.
func (s *Server) analyze(c *gin.Context) (*pipeline.Result, *airquality.Analysis, bool) {
	opts := airquality.Options{}
	threshold, err := optionalFloat(c, "alert_threshold")
	if err != nil {
		s.writeError(c, err, nil, nil)
		return nil, nil, false
	}
	opts.AlertThreshold = threshold
	if raw := c.PostForm("interval"); raw != "" {
		interval, err := temporal.ParseInterval(raw)
		if err != nil {
			s.writeError(c, apperrors.WithCode(apperrors.CodeInvalidInput, err), nil, nil)
			return nil, nil, false
		}
		opts.Resample = temporal.DefaultResampleConfig()
		opts.Resample.Interval = interval
	}

	table, result, err := s.process(c)
	if err != nil {
		s.writeError(c, err, result, table)
		return nil, nil, false
	}
	analysis, err := s.analyzer.Analyze(result.Series, opts)
	if err != nil {
		s.writeError(c, err, result, table)
		return nil, nil, false
	}
	return result, analysis, true
}

// process reads the uploaded file and runs the pipeline with the form's
// column overrides.
func (s *Server) process(c *gin.Context) (*ingestion.RawTable, *pipeline.Result, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			return nil, nil, err
		}
		return nil, nil, apperrors.InvalidInput("multipart field \"file\" is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to open upload")
	}
	defer file.Close()

	table, err := s.reader.Read(file, header.Filename)
	if err != nil {
		return nil, nil, err
	}

	override := pipeline.ColumnOverride{
		TimeColumn:  strings.TrimSpace(c.PostForm("time_col")),
		ValueColumn: strings.TrimSpace(c.PostForm("value_col")),
	}
	result, err := s.pipeline.Run(table, override)
	return table, result, err
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error       errorBody                  `json:"error"`
	Columns     []string                   `json:"columns,omitempty"`
	Detection   *telemetry.DetectionResult `json:"detection,omitempty"`
	Diagnostics *telemetry.Diagnostics     `json:"diagnostics,omitempty"`
}

// writeError maps the error code to a status. Detection outcome and the
// column list go along so the client can offer a manual selection.
func (s *Server) writeError(c *gin.Context, err error, result *pipeline.Result, table *ingestion.RawTable) {
	if isTooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: errorBody{
			Code:    apperrors.CodeInvalidInput,
			Message: fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB),
		}})
		return
	}

	code := apperrors.GetCode(err)
	resp := errorResponse{Error: errorBody{Code: code, Message: err.Error()}}
	if table != nil {
		resp.Columns = table.ColumnNames()
	}
	if result != nil {
		resp.Detection = &result.Detection
		if result.Diagnostics.RowsTotal > 0 {
			resp.Diagnostics = &result.Diagnostics
		}
	}

	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		log.Printf("[Server] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, resp)
}

func statusFor(code string) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeAmbiguousSchema, apperrors.CodeUnparsableTimeEncoding, apperrors.CodeEmptyResult:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || (err != nil && strings.Contains(err.Error(), "request body too large"))
}

// optionalFloat reads a finite float form value; absent means nil
func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		raw = strings.TrimSpace(c.Query(key))
	}
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be a number, got %q", key, raw))
	}
	return &v, nil
}
