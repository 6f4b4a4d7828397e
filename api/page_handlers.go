package api

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"strings"

	"github.com/classroomhelper/notes-assistant/internal/models"
	"github.com/classroomhelper/notes-assistant/internal/session"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData feeds templates/index.html
type pageData struct {
	Accept        string
	Modes         []models.TaskMode
	Selected      models.TaskMode
	SelectedLower string
	Notice        string

	Extracted     bool
	ExtractedText string

	Generated       bool
	Material        string
	MaterialHTML    template.HTML
	MaterialEncoded string // base64, so form submission keeps LF line endings
	ModelName       string
}

func (h *Handler) newPage(mode models.TaskMode) *pageData {
	return &pageData{
		Accept:        strings.Join(models.AcceptedExtensions, ","),
		Modes:         models.TaskModes,
		Selected:      mode,
		SelectedLower: strings.ToLower(string(mode)),
		ModelName:     h.provider.Model(),
	}
}

// Index renders the empty upload page
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.newPage(models.DefaultTaskMode))
}

// Upload runs extraction on the posted image and, text permitting, generation
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	img, err := h.readUpload(w, r)
	if err != nil {
		page := h.newPage(models.DefaultTaskMode)
		page.Notice = err.Error()
		h.render(w, http.StatusBadRequest, page)
		return
	}

	mode, err := models.ParseTaskMode(r.FormValue("mode"))
	if err != nil {
		mode = models.DefaultTaskMode
	}

	it := h.flow.Upload(r.Context(), img, mode)
	h.render(w, http.StatusOK, h.interactionPage(it))
}

// Generate re-runs prompt and completion after a mode change
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes())
	if err := r.ParseForm(); err != nil {
		page := h.newPage(models.DefaultTaskMode)
		page.Notice = "invalid form data"
		h.render(w, http.StatusBadRequest, page)
		return
	}

	mode, err := models.ParseTaskMode(r.PostFormValue("mode"))
	if err != nil {
		page := h.newPage(models.DefaultTaskMode)
		page.Notice = err.Error()
		h.render(w, http.StatusBadRequest, page)
		return
	}

	it := h.flow.Generate(r.Context(), r.PostFormValue("text"), mode)
	h.render(w, http.StatusOK, h.interactionPage(it))
}

// Download returns the generated material as a plain-text attachment.
// The page posts the material base64 encoded.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	content, err := base64.StdEncoding.DecodeString(r.PostFormValue("content"))
	if err != nil {
		http.Error(w, "invalid content encoding", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+models.DownloadFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func (h *Handler) interactionPage(it *session.Interaction) *pageData {
	page := h.newPage(it.Mode)
	page.Extracted = true
	page.ExtractedText = it.Text

	if it.Generated() {
		page.Generated = true
		page.Material = it.Material()
		page.MaterialHTML = h.renderMarkdown(page.Material)
		page.MaterialEncoded = base64.StdEncoding.EncodeToString([]byte(page.Material))
	}
	return page
}

// renderMarkdown converts model output to HTML. goldmark drops raw HTML by
// default, so the result is safe to embed.
func (h *Handler) renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(source), &buf); err != nil {
		h.logger.Warn().Err(err).Msg("markdown conversion failed, showing plain text")
		return template.HTML("<pre>" + template.HTMLEscapeString(source) + "</pre>")
	}
	return template.HTML(buf.String())
}

func (h *Handler) render(w http.ResponseWriter, status int, page *pageData) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, page); err != nil {
		h.logger.Error().Err(err).Msg("template execution failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
