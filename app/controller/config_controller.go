package controller

import (
	"bytes"
	"net/http"
	"strings"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
	"quick-quote/metrics"
	"quick-quote/models"
	"quick-quote/service"
	"quick-quote/session"
)

const (
	// maxUploadBytes caps an uploaded configuration workbook
	maxUploadBytes = 10 << 20
	xlsxMimeType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ConfigController handles configuration workbook import and export
type ConfigController struct {
	store         session.Store
	importer      *service.ConfigImportService
	drive         service.DriveServiceInterface
	sync          service.SyncServiceInterface
	defaultFileID string
	metrics       *metrics.QuoteMetrics
}

// NewConfigController creates a new ConfigController. drive may be nil when
// Google Drive is not configured.
func NewConfigController(store session.Store, importer *service.ConfigImportService, drive service.DriveServiceInterface, sync service.SyncServiceInterface, defaultFileID string, m *metrics.QuoteMetrics) *ConfigController {
	return &ConfigController{
		store:         store,
		importer:      importer,
		drive:         drive,
		sync:          sync,
		defaultFileID: defaultFileID,
		metrics:       m,
	}
}

// ConfigResponse is the session after an import, with merge warnings
type ConfigResponse struct {
	SessionResponse
	Warnings []string `json:"warnings"`
}

func (c *ConfigController) apply(w http.ResponseWriter, r *http.Request, op, source string, cfg models.EffectiveConfig) {
	id, s, ok := mutate(w, r, c.store, op, session.SetConfig{Config: cfg})
	if !ok {
		c.metrics.ObserveConfigImport(source, metrics.OutcomeFailure)
		return
	}
	c.metrics.ObserveConfigImport(source, metrics.OutcomeSuccess)
	logger.GetLogger().Infow("✅ "+op+": configuration applied", "session_id", id, "source", source,
		"deals", len(s.Deals), "tips", len(s.Tips), "warnings", len(cfg.Warnings))
	writeJSON(w, http.StatusOK, ConfigResponse{SessionResponse: newSessionResponse(id, s), Warnings: cfg.Warnings})
}

// Upload handles POST /api/sessions/{id}/config (multipart field "file")
func (c *ConfigController) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "UploadConfig"
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, op, apperrors.ValidationFailed("Invalid upload", err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, op, apperrors.ValidationFailed("Missing workbook", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	cfg, err := c.importer.ImportReader(file)
	if err != nil {
		c.metrics.ObserveConfigImport("upload", metrics.OutcomeFailure)
		writeError(w, op, err)
		return
	}
	logger.GetLogger().Infow("📥 UploadConfig: workbook parsed", "filename", header.Filename, "size", header.Size)
	c.apply(w, r, op, "upload", cfg)
}

type driveRequest struct {
	FileID string `json:"fileId"`
}

// FromDrive handles POST /api/sessions/{id}/config/drive
func (c *ConfigController) FromDrive(w http.ResponseWriter, r *http.Request) {
	const op = "DriveConfig"
	if c.drive == nil {
		writeError(w, op, apperrors.Unavailable("Google Drive is not configured"))
		return
	}
	var req driveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, op, err)
		return
	}
	fileID := strings.TrimSpace(req.FileID)
	if fileID == "" {
		fileID = c.defaultFileID
	}
	if fileID == "" {
		writeError(w, op, apperrors.ValidationFailed("Missing file id", "fileId is required"))
		return
	}

	data, err := c.drive.DownloadFile(r.Context(), fileID)
	if err == nil {
		var cfg models.EffectiveConfig
		if cfg, err = c.importer.ImportReader(bytes.NewReader(data)); err == nil {
			c.apply(w, r, op, "drive", cfg)
			return
		}
	}
	c.metrics.ObserveConfigImport("drive", metrics.OutcomeFailure)
	writeError(w, op, err)
}

// ListDriveWorkbooks handles GET /api/config/drive/workbooks?folderId=...
func (c *ConfigController) ListDriveWorkbooks(w http.ResponseWriter, r *http.Request) {
	const op = "ListDriveWorkbooks"
	if c.drive == nil {
		writeError(w, op, apperrors.Unavailable("Google Drive is not configured"))
		return
	}
	folderID := strings.TrimSpace(r.URL.Query().Get("folderId"))
	if folderID == "" {
		writeError(w, op, apperrors.ValidationFailed("Missing folder id", "folderId query parameter is required"))
		return
	}
	files, err := c.drive.ListWorkbooks(r.Context(), folderID)
	if err != nil {
		writeError(w, op, err)
		return
	}
	if files == nil {
		files = []service.DriveFile{}
	}
	writeJSON(w, http.StatusOK, files)
}

// Template handles GET /api/sessions/{id}/config/template
// Exports the session's configuration as an editable workbook.
func (c *ConfigController) Template(w http.ResponseWriter, r *http.Request) {
	const op = "ConfigTemplate"
	_, s, err := load(r.Context(), c.store, r)
	if err != nil {
		writeError(w, op, err)
		return
	}

	var buf bytes.Buffer
	if err := c.importer.ExportWorkbook(s.Config(), &buf); err != nil {
		writeError(w, op, apperrors.Wrap(err, apperrors.ServerError, "Failed to export configuration"))
		return
	}
	w.Header().Set("Content-Type", xlsxMimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="quote-config.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Current handles GET /api/config
// Returns the configuration new sessions start with.
func (c *ConfigController) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.sync.Current())
}

// Sync handles POST /api/config/sync
// Re-reads the startup workbook. Sessions already in progress keep their configuration.
func (c *ConfigController) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := c.sync.Sync(r.Context())
	if err != nil {
		writeError(w, "SyncConfig", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
