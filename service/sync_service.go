package service

import (
	"bytes"
	"context"
	"sync"
	"time"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
	"quick-quote/metrics"
	"quick-quote/models"
)

// Sync sources
const (
	SyncSourceFile  = "file"
	SyncSourceDrive = "drive"
)

// SyncResult summarizes one configuration refresh
type SyncResult struct {
	Source   string    `json:"source"`
	Deals    int       `json:"deals"`
	Tips     int       `json:"tips"`
	Warnings []string  `json:"warnings"`
	SyncedAt time.Time `json:"syncedAt"`
}

// SyncService keeps the startup configuration in step with a workbook on disk
// or in Google Drive. A local workbook path wins over the Drive file id.
// Implements SyncServiceInterface
type SyncService struct {
	importer     *ConfigImportService
	driveService DriveServiceInterface
	workbookPath string
	driveFileID  string
	metrics      *metrics.QuoteMetrics
	now          func() time.Time

	mu      sync.RWMutex
	current models.EffectiveConfig
}

// NewSyncService creates a new SyncService starting from the importer's defaults.
// driveService may be nil.
func NewSyncService(importer *ConfigImportService, driveService DriveServiceInterface, workbookPath, driveFileID string, m *metrics.QuoteMetrics) *SyncService {
	return &SyncService{
		importer:     importer,
		driveService: driveService,
		workbookPath: workbookPath,
		driveFileID:  driveFileID,
		metrics:      m,
		now:          time.Now,
		current:      importer.Defaults(),
	}
}

// Ensure SyncService implements SyncServiceInterface
var _ SyncServiceInterface = (*SyncService)(nil)

// Configured reports whether there is a workbook to sync from
func (s *SyncService) Configured() bool {
	return s.source() != ""
}

func (s *SyncService) source() string {
	switch {
	case s.workbookPath != "":
		return SyncSourceFile
	case s.driveFileID != "" && s.driveService != nil:
		return SyncSourceDrive
	}
	return ""
}

func (s *SyncService) Current() models.EffectiveConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.EffectiveConfig{
		Pricing: s.current.Pricing,
		Deals:   append([]models.Deal{}, s.current.Deals...),
		Tips:    append([]models.Tip{}, s.current.Tips...),
	}
}

func (s *SyncService) Sync(ctx context.Context) (SyncResult, error) {
	source := s.source()
	if source == "" {
		return SyncResult{}, apperrors.Unavailable("No configuration workbook is configured")
	}
	logger.GetLogger().Infow("🔄 Sync: refreshing configuration", "source", source)

	var (
		cfg models.EffectiveConfig
		err error
	)
	if source == SyncSourceFile {
		cfg, err = s.importer.ImportFile(s.workbookPath)
	} else {
		var data []byte
		if data, err = s.driveService.DownloadFile(ctx, s.driveFileID); err == nil {
			cfg, err = s.importer.ImportReader(bytes.NewReader(data))
		}
	}
	if err != nil {
		s.metrics.ObserveConfigImport(source, metrics.OutcomeFailure)
		logger.GetLogger().Warnw("⚠️  Sync: keeping current configuration", "source", source, "error", err)
		return SyncResult{}, err
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	s.metrics.ObserveConfigImport(source, metrics.OutcomeSuccess)

	for _, w := range cfg.Warnings {
		logger.GetLogger().Warnw("⚠️  Sync: "+w, "source", source)
	}
	result := SyncResult{
		Source:   source,
		Deals:    len(cfg.Deals),
		Tips:     len(cfg.Tips),
		Warnings: cfg.Warnings,
		SyncedAt: s.now(),
	}
	logger.GetLogger().Infow("🎉 Sync: configuration refreshed", "source", source, "deals", result.Deals, "tips", result.Tips, "warnings", len(result.Warnings))
	return result, nil
}

// Run syncs every interval until ctx is done. Failed syncs are logged and retried
// on the next tick.
func (s *SyncService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Sync(ctx)
		}
	}
}
