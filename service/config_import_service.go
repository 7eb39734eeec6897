package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
	"quick-quote/models"
	"quick-quote/pricing"
)

// Sheet names in a configuration workbook
const (
	SheetPricing = "Pricing"
	SheetDeals   = "Deals"
	SheetTips    = "Tips"
)

// dealColumns is the column order of the Deals sheet
var dealColumns = []string{"id", "title", "description", "requiresFollowUp", "followUpQuestion", "followUpType", "followUpTarget"}

var tipColumns = []string{"title", "description"}

// ConfigSource is the raw content of a configuration workbook. A nil section
// means the sheet was absent.
type ConfigSource struct {
	// Pricing holds key/value rows
	Pricing [][]string
	// Deals and Tips hold one map per data row keyed by lower-cased header
	Deals []map[string]string
	Tips  []map[string]string

	HasPricing bool
	HasDeals   bool
	HasTips    bool
}

// ConfigImportService turns configuration workbooks into an EffectiveConfig
type ConfigImportService struct {
	defaults models.EffectiveConfig
}

// NewConfigImportService creates an importer that overlays workbooks on the built-in configuration
func NewConfigImportService() *ConfigImportService {
	return NewConfigImportServiceWithDefaults(models.EffectiveConfig{
		Pricing: models.DefaultPricingCatalog(),
		Deals:   pricing.DefaultDeals(),
		Tips:    pricing.DefaultTips(),
	})
}

// NewConfigImportServiceWithDefaults creates an importer with custom fallbacks
func NewConfigImportServiceWithDefaults(defaults models.EffectiveConfig) *ConfigImportService {
	return &ConfigImportService{defaults: defaults}
}

// Defaults returns the configuration used when a workbook omits a section
func (s *ConfigImportService) Defaults() models.EffectiveConfig {
	return s.defaults
}

// ImportFile reads and merges a workbook from disk
func (s *ConfigImportService) ImportFile(path string) (models.EffectiveConfig, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		logger.GetLogger().Errorw("❌ ImportFile: could not open workbook", "path", path, "error", err)
		return models.EffectiveConfig{}, apperrors.ConfigParse(err, "failed to open configuration workbook")
	}
	defer f.Close()

	src, err := readWorkbook(f)
	if err != nil {
		return models.EffectiveConfig{}, err
	}
	return s.Merge(src), nil
}

// ImportReader reads and merges a workbook from a stream
func (s *ConfigImportService) ImportReader(r io.Reader) (models.EffectiveConfig, error) {
	src, err := s.ParseWorkbook(r)
	if err != nil {
		return models.EffectiveConfig{}, err
	}
	return s.Merge(src), nil
}

// ParseWorkbook extracts the Pricing, Deals and Tips sheets. Sheet names and
// header cells are matched case-insensitively. An unreadable workbook is a
// ConfigParseError and nothing is imported.
func (s *ConfigImportService) ParseWorkbook(r io.Reader) (ConfigSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		logger.GetLogger().Errorw("❌ ParseWorkbook: could not open workbook", "error", err)
		return ConfigSource{}, apperrors.ConfigParse(err, "failed to read configuration workbook")
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (ConfigSource, error) {
	var src ConfigSource
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return ConfigSource{}, apperrors.ConfigParse(err, fmt.Sprintf("failed to read sheet %q", sheet))
		}
		switch strings.ToLower(strings.TrimSpace(sheet)) {
		case strings.ToLower(SheetPricing):
			src.HasPricing = true
			src.Pricing = rows
		case strings.ToLower(SheetDeals):
			src.HasDeals = true
			src.Deals = tableRows(rows)
		case strings.ToLower(SheetTips):
			src.HasTips = true
			src.Tips = tableRows(rows)
		}
	}
	logger.GetLogger().Infow("📥 ParseWorkbook: sheets read",
		"pricing_rows", len(src.Pricing), "deal_rows", len(src.Deals), "tip_rows", len(src.Tips))
	return src, nil
}

// tableRows turns a header row plus data rows into maps keyed by lower-cased header
func tableRows(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return []map[string]string{}
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		empty := true
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				empty = false
			}
			m[header[i]] = cell
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// Merge overlays a parsed workbook on the defaults. Rates that are missing,
// unparseable or out of range keep their default and are reported in Warnings.
func (s *ConfigImportService) Merge(src ConfigSource) models.EffectiveConfig {
	cfg := models.EffectiveConfig{
		Pricing:  s.defaults.Pricing,
		Deals:    append([]models.Deal{}, s.defaults.Deals...),
		Tips:     append([]models.Tip{}, s.defaults.Tips...),
		Warnings: []string{},
	}
	warn := func(format string, args ...interface{}) {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf(format, args...))
	}

	if src.HasPricing {
		cfg.Pricing = mergePricing(cfg.Pricing, src.Pricing, warn)
	}

	if src.HasDeals {
		deals := parseDeals(src.Deals, warn)
		if len(deals) > 0 {
			cfg.Deals = deals
		} else {
			warn("%s: no rows with an id; kept the current deals", SheetDeals)
		}
	}

	if src.HasTips {
		cfg.Tips = parseTips(src.Tips, warn)
	}

	logger.GetLogger().Infow("✅ Merge: configuration merged",
		"deals", len(cfg.Deals), "tips", len(cfg.Tips), "warnings", len(cfg.Warnings))
	return cfg
}

func mergePricing(base models.PricingCatalog, rows [][]string, warn func(string, ...interface{})) models.PricingCatalog {
	out := base
	for i, row := range rows {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(row[0]))
		raw := strings.TrimSpace(row[1])
		current, known := out.Get(name)
		if !known {
			// a leading key/value header row is expected
			if i == 0 {
				if _, err := ParseRateValue(raw); err != nil {
					continue
				}
			}
			warn("%s: unknown rate %q ignored", SheetPricing, row[0])
			continue
		}
		v, err := ParseRateValue(raw)
		if err != nil {
			warn("%s: %s value %q is not a number; kept default %s", SheetPricing, name, raw, num(current))
			continue
		}
		if err := models.ValidateRate(name, v); err != nil {
			warn("%s: %v; kept default %s", SheetPricing, err, num(current))
			continue
		}
		out, _ = out.With(name, v)
	}
	return out
}

// ParseRateValue accepts plain numbers, "$1,234.50" and percentages like "15%"
func ParseRateValue(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if percent {
		v /= 100
	}
	return v, nil
}

func parseDeals(rows []map[string]string, warn func(string, ...interface{})) []models.Deal {
	deals := []models.Deal{}
	seen := map[string]bool{}
	for _, row := range rows {
		id := row["id"]
		if id == "" {
			continue
		}
		if seen[id] {
			warn("%s: duplicate id %q ignored", SheetDeals, id)
			continue
		}
		seen[id] = true

		deal := models.Deal{
			ID:               id,
			Title:            row["title"],
			Description:      row["description"],
			RequiresFollowUp: parseFollowUpRule(row["requiresfollowup"]),
			FollowUpQuestion: row["followupquestion"],
			FollowUpType:     models.ParseFollowUpType(row["followuptype"]),
			FollowUpTarget:   row["followuptarget"],
		}
		if deal.Title == "" {
			deal.Title = "Untitled Deal"
		}
		if raw := row["followuptype"]; raw != "" && deal.FollowUpType == models.FollowUpNone {
			warn("%s: deal %q has unknown followUpType %q", SheetDeals, id, raw)
		}
		if deal.FollowUpTarget != "" && !models.IsNumericField(deal.FollowUpTarget) {
			warn("%s: deal %q targets unknown field %q (expected one of %s); answers will be kept as notes",
				SheetDeals, id, deal.FollowUpTarget, strings.Join(models.NumericFieldNames(), ", "))
			deal.FollowUpTarget = ""
		}
		deals = append(deals, deal)
	}
	return deals
}

// parseFollowUpRule reads TRUE/FALSE cells and "when:<condition>"
func parseFollowUpRule(raw string) models.FollowUpRule {
	s := strings.TrimSpace(raw)
	if cond, ok := strings.CutPrefix(strings.ToLower(s), "when:"); ok {
		return models.FollowUpWhen(models.FollowUpCondition(strings.TrimSpace(cond)))
	}
	return models.FollowUpIf(strings.EqualFold(s, "true"))
}

func followUpCell(rule models.FollowUpRule) string {
	raw, _ := rule.MarshalJSON()
	s := strings.Trim(string(raw), `"`)
	if strings.HasPrefix(s, "when:") {
		return s
	}
	return strings.ToUpper(s)
}

func parseTips(rows []map[string]string, warn func(string, ...interface{})) []models.Tip {
	tips := []models.Tip{}
	for i, row := range rows {
		if row["title"] == "" || row["description"] == "" {
			warn("%s: row %d needs both a title and a description", SheetTips, i+2)
			continue
		}
		tips = append(tips, models.Tip{Title: row["title"], Description: row["description"]})
	}
	return tips
}

// ExportWorkbook writes cfg as a workbook that ImportReader accepts
func (s *ConfigImportService) ExportWorkbook(cfg models.EffectiveConfig, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SheetPricing); err != nil {
		return fmt.Errorf("failed to create pricing sheet: %w", err)
	}
	// built-in number format 10 is "0.00%"
	percentStyle, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return fmt.Errorf("failed to create percent style: %w", err)
	}
	row := 1
	if err := f.SetSheetRow(SheetPricing, "A1", &[]interface{}{"key", "value"}); err != nil {
		return fmt.Errorf("failed to write pricing header: %w", err)
	}
	for _, name := range cfg.Pricing.Names() {
		row++
		v, _ := cfg.Pricing.Get(name)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetPricing, cell, &[]interface{}{name, v}); err != nil {
			return fmt.Errorf("failed to write rate %s: %w", name, err)
		}
		if models.IsPercentageRate(name) {
			valueCell, _ := excelize.CoordinatesToCellName(2, row)
			if err := f.SetCellStyle(SheetPricing, valueCell, valueCell, percentStyle); err != nil {
				return fmt.Errorf("failed to format rate %s: %w", name, err)
			}
		}
	}

	if _, err := f.NewSheet(SheetDeals); err != nil {
		return fmt.Errorf("failed to create deals sheet: %w", err)
	}
	header := make([]interface{}, len(dealColumns))
	for i, c := range dealColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetDeals, "A1", &header); err != nil {
		return fmt.Errorf("failed to write deals header: %w", err)
	}
	for i, d := range cfg.Deals {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{d.ID, d.Title, d.Description, followUpCell(d.RequiresFollowUp),
			d.FollowUpQuestion, string(d.FollowUpType), d.FollowUpTarget}
		if err := f.SetSheetRow(SheetDeals, cell, &values); err != nil {
			return fmt.Errorf("failed to write deal %s: %w", d.ID, err)
		}
	}

	if _, err := f.NewSheet(SheetTips); err != nil {
		return fmt.Errorf("failed to create tips sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetTips, "A1", &[]interface{}{tipColumns[0], tipColumns[1]}); err != nil {
		return fmt.Errorf("failed to write tips header: %w", err)
	}
	for i, t := range cfg.Tips {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetTips, cell, &[]interface{}{t.Title, t.Description}); err != nil {
			return fmt.Errorf("failed to write tip %d: %w", i+1, err)
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
