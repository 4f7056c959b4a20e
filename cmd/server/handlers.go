// cmd/server/handlers.go
package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/verakocha/veriflow/internal/apiclient"
	"github.com/verakocha/veriflow/internal/browser"
	"github.com/verakocha/veriflow/internal/classifier"
	"github.com/verakocha/veriflow/internal/fileparser"
	"github.com/verakocha/veriflow/internal/monitoring"
	"github.com/verakocha/veriflow/internal/pipeline"
	"github.com/verakocha/veriflow/internal/scraper"
	"github.com/verakocha/veriflow/internal/validation"
	"github.com/verakocha/veriflow/pkg/types"
)

const maxUploadBytes = 50 << 20

type server struct {
	parser     *fileparser.Parser
	classifier *classifier.Classifier
	validator  *validation.Pipeline
	scraper    *scraper.Service
	pipeline   *pipeline.Pipeline
	metrics    *monitoring.Metrics
	health     *monitoring.Health
	logger     *zap.Logger
}

func newServer(logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}

	parser := fileparser.NewParser(logger)
	scrapeService := scraper.NewService(browser.NewRegistry(), logger)
	metrics := monitoring.NewMetrics()
	api := apiclient.NewClient(apiclient.Options{Logger: logger, Metrics: metrics})

	return &server{
		parser:     parser,
		classifier: classifier.NewClassifier(),
		validator:  validation.NewPipeline(logger),
		scraper:    scrapeService,
		pipeline:   pipeline.New(parser, scrapeService, api, metrics, logger),
		metrics:    metrics,
		health:     monitoring.NewHealth(version),
		logger:     logger,
	}
}

func (s *server) routes() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/preview", s.handlePreview).Methods(http.MethodPost)
	api.HandleFunc("/classify", s.handleClassify).Methods(http.MethodPost)
	api.HandleFunc("/validate", s.handleValidate).Methods(http.MethodPost)
	api.HandleFunc("/probe", s.handleProbe).Methods(http.MethodGet)
	api.HandleFunc("/scrape", s.handleScrape).Methods(http.MethodPost)

	router.Handle("/health", s.health.Handler()).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return router
}

// handlePreview accepts a multipart upload and returns the parsed
// schema and preview rows.
func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	opts := fileparser.DefaultParseOptions()
	if encoding := r.FormValue("encoding"); encoding != "" {
		opts.Encoding = encoding
	}
	if delimiter := r.FormValue("delimiter"); delimiter != "" {
		opts.Delimiter = delimiter
	}
	if r.FormValue("has_header") == "false" {
		opts.HasHeader = false
	}
	if skip, err := strconv.Atoi(r.FormValue("skip_rows")); err == nil && skip > 0 {
		opts.SkipRows = skip
	}
	if sheet := r.FormValue("sheet_name"); sheet != "" {
		opts.SheetName = sheet
	}

	previewRows := 10
	if n, err := strconv.Atoi(r.FormValue("preview_rows")); err == nil && n > 0 {
		previewRows = n
	}

	result := s.parser.Preview(header.Filename, data, opts, previewRows)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, result)
}

type classifyRequest struct {
	Columns []types.ColumnInfo `json:"columns"`
	Rows    []types.Row        `json:"rows,omitempty"`
}

// handleClassify classifies an already-parsed schema.
func (s *server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Columns) == 0 {
		s.writeError(w, http.StatusBadRequest, "columns are required")
		return
	}

	result := s.classifier.Classify(req.Columns, req.Rows)
	s.metrics.ObserveCategory(string(result.Category))
	s.writeJSON(w, http.StatusOK, result)
}

type validateRequest struct {
	Columns  []types.ColumnInfo     `json:"columns"`
	Rows     []types.Row            `json:"rows"`
	Rules    []types.ValidationRule `json:"rules,omitempty"`
	Cleaning *types.CleaningOptions `json:"cleaning,omitempty"`
}

// handleValidate runs rule evaluation and optional cleaning over
// caller-supplied rows.
func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Columns) == 0 {
		s.writeError(w, http.StatusBadRequest, "columns are required")
		return
	}

	result := s.validator.Validate(req.Rows, req.Columns, req.Rules, req.Cleaning)
	s.metrics.ObserveIssues(result.Summary.Errors, result.Summary.Warnings, result.Summary.Infos)
	s.writeJSON(w, http.StatusOK, result)
}

// handleProbe checks a URL and recommends a scrape engine.
func (s *server) handleProbe(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		s.writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	probe, err := s.scraper.TestURL(r.Context(), rawURL)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, probe)
}

// handleScrape runs a scrape-to-dataset ingestion synchronously.
func (s *server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var cfg types.ScrapingConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result := s.pipeline.IngestScrape(r.Context(), &cfg, nil, nil)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, result)
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response", zap.Error(err))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
