package api

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/classroomhelper/notes-assistant/internal/ai"
	"github.com/classroomhelper/notes-assistant/internal/models"
	"github.com/classroomhelper/notes-assistant/internal/ocr"
	"github.com/classroomhelper/notes-assistant/internal/session"
)

const Version = "1.0.0"

// Handler handles HTTP requests for the notes assistant
type Handler struct {
	config   *models.Config
	flow     *session.Flow
	engine   ocr.Engine
	provider ai.Provider
	logger   zerolog.Logger
	markdown goldmark.Markdown
	page     *template.Template
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, flow *session.Flow, engine ocr.Engine, provider ai.Provider, logger zerolog.Logger) *Handler {
	return &Handler{
		config:   config,
		flow:     flow,
		engine:   engine,
		provider: provider,
		logger:   logger.With().Str("component", "http").Logger(),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		page:     pageTemplate,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Single page
	router.HandleFunc("/", h.Index).Methods("GET")
	router.HandleFunc("/upload", h.Upload).Methods("POST")
	router.HandleFunc("/generate", h.Generate).Methods("POST")
	router.HandleFunc("/download", h.Download).Methods("POST")

	// JSON API
	router.HandleFunc("/api/extract", h.APIExtract).Methods("POST")
	router.HandleFunc("/api/generate", h.APIGenerate).Methods("POST")
	router.HandleFunc("/api/modes", h.APIModes).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	router.Use(h.logRequests)
	return router
}

// logRequests records method, path, status and latency for every request
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Memory    MemoryStats   `json:"memory"`
	OCR       ServiceStatus `json:"ocr"`
	LLM       ServiceStatus `json:"llm"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Name      string `json:"name,omitempty"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - reports whether the OCR engine and the LLM backend answer
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	ocrStatus := h.checkOCR(ctx)
	llmStatus := h.checkLLM(ctx)

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		OCR: ocrStatus,
		LLM: llmStatus,
	}

	// If critical dependencies are down, mark as degraded
	if !ocrStatus.Available || !llmStatus.Available {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkOCR verifies the OCR engine can be invoked
func (h *Handler) checkOCR(ctx context.Context) ServiceStatus {
	version, err := h.engine.Version(ctx)
	if err != nil {
		return ServiceStatus{Available: false, Name: h.engine.Name(), Error: err.Error()}
	}
	return ServiceStatus{Available: true, Name: h.engine.Name(), Version: version}
}

// checkLLM verifies the completion backend is reachable
func (h *Handler) checkLLM(ctx context.Context) ServiceStatus {
	status := ServiceStatus{Name: h.provider.Name(), Version: h.provider.Model()}
	pinger, ok := h.provider.(ai.Pinger)
	if !ok {
		// Nothing cheap to probe; assume configured means available
		status.Available = true
		return status
	}
	if err := pinger.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Available = true
	return status
}

// ExtractResponse is returned by the JSON API
type ExtractResponse struct {
	Success          bool    `json:"success"`
	InteractionID    string  `json:"interactionId"`
	ExtractedText    string  `json:"extractedText"`
	ExtractionStatus string  `json:"extractionStatus,omitempty"`
	Mode             string  `json:"mode"`
	Generated        bool    `json:"generated"`
	Material         string  `json:"material,omitempty"`
	CompletionStatus string  `json:"completionStatus,omitempty"`
	OCRDuration      float64 `json:"ocrDuration,omitempty"` // seconds
	AIDuration       float64 `json:"aiDuration,omitempty"`  // seconds
}

func toResponse(it *session.Interaction) ExtractResponse {
	resp := ExtractResponse{
		Success:       true,
		InteractionID: it.ID,
		ExtractedText: it.Text,
		Mode:          string(it.Mode),
		Generated:     it.Generated(),
		Material:      it.Material(),
	}
	if it.Extraction != nil {
		resp.ExtractionStatus = string(it.Extraction.Status)
		resp.OCRDuration = it.Extraction.Duration.Seconds()
	}
	if it.Completion != nil {
		resp.CompletionStatus = string(it.Completion.Status)
		resp.AIDuration = it.Completion.Duration.Seconds()
	}
	return resp
}

// APIExtract handles a multipart upload and returns the interaction as JSON
func (h *Handler) APIExtract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	img, err := h.readUpload(w, r)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := models.ParseTaskMode(r.FormValue("mode"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	it := h.flow.Upload(r.Context(), img, mode)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toResponse(it))
}

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// APIGenerate regenerates material for already extracted text
func (h *Handler) APIGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req GenerateRequest
	body := http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes())
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode, err := models.ParseTaskMode(req.Mode)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	it := h.flow.Generate(r.Context(), req.Text, mode)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toResponse(it))
}

// ModeInfo describes one selectable task mode
type ModeInfo struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// APIModes lists the task modes in selector order
func (h *Handler) APIModes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	modes := make([]ModeInfo, 0, len(models.TaskModes))
	for _, m := range models.TaskModes {
		modes = append(modes, ModeInfo{Key: m.Key(), Label: string(m), Default: m == models.DefaultTaskMode})
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"modes":   modes,
	})
}

// readUpload parses the multipart form and returns the whitelisted image
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (models.UploadedImage, error) {
	maxBytes := h.config.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return models.UploadedImage{}, fmt.Errorf("file too large or invalid form data")
	}

	// Accept both "image" and "file" field names
	file, header, err := r.FormFile("image")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			return models.UploadedImage{}, fmt.Errorf("no file provided (use 'image' or 'file' field)")
		}
	}
	defer file.Close()

	format, err := models.ImageFormatFromFilename(header.Filename)
	if err != nil {
		// No usable extension; fall back to the part's content type
		var ctErr error
		format, ctErr = models.ImageFormatFromContentType(header.Header.Get("Content-Type"))
		if ctErr != nil || strings.Contains(header.Filename, ".") {
			return models.UploadedImage{}, err
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return models.UploadedImage{}, fmt.Errorf("failed to read file")
	}
	if len(data) == 0 {
		return models.UploadedImage{}, fmt.Errorf("uploaded file is empty")
	}

	return models.UploadedImage{Data: data, Format: format, Filename: header.Filename}, nil
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
