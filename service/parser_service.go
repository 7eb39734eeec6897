package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
	"quick-quote/models"
)

// DefaultGeminiModel is used when no model id is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// ParseFailedMessage is shown when a description cannot be turned into job details
const ParseFailedMessage = "Could not understand the job description. Please fill out the form manually."

// StructuredModel returns a JSON document for a prompt
type StructuredModel interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// GeminiModel implements StructuredModel with Gemini and a JobDetails response schema
type GeminiModel struct {
	client  *genai.Client
	modelID string
}

var _ StructuredModel = (*GeminiModel)(nil)

// NewGeminiModel creates a Gemini client for description parsing
func NewGeminiModel(ctx context.Context, apiKey, modelID string) (*GeminiModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("parser: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("parser: failed to create gemini client: %w", err)
	}
	return &GeminiModel{client: client, modelID: modelID}, nil
}

func (g *GeminiModel) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.modelID)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = jobDetailsSchema()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("parser: gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("parser: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("parser: gemini returned empty content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return strings.TrimSpace(out.String()), nil
}

// Close releases resources held by the Gemini client
func (g *GeminiModel) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func jobDetailsSchema() *genai.Schema {
	number := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"distance":          number("Distance in miles to the job site."),
			"sqft":              number("Total square footage of carpet to be cleaned."),
			"petTreatmentRooms": number("Number of rooms requiring pet odor/stain treatment."),
			"clientType": {
				Type:        genai.TypeString,
				Enum:        []string{string(models.ClientFirstTime), string(models.ClientRepeat)},
				Description: "Whether the client is new or returning.",
			},
			"largeItems": number("Number of large furniture items to move (e.g., sofas, beds)."),
			"smallItems": number("Number of small furniture items to move (e.g., chairs, tables)."),
			"areaRugs": {
				Type:        genai.TypeArray,
				Description: "List of area rugs to be cleaned.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"sqft": number("Square footage of the area rug."),
					},
				},
			},
			"floors":          number("Number of floors in the building."),
			"hours":           number("Estimated hours for the job."),
			"initialDiscount": number("Any initial discount amount offered."),
		},
	}
}

// ParserService turns a free-text job description into job details
type ParserService struct {
	model StructuredModel
	now   func() time.Time
}

// NewParserService creates a parser over model. A nil model makes every
// non-empty description fail with an ExternalParseError.
func NewParserService(model StructuredModel) *ParserService {
	return &ParserService{model: model, now: time.Now}
}

func buildParsePrompt(text string) string {
	return "Parse the following carpet cleaning job description and extract the details into a structured JSON object. " +
		"If a detail is not mentioned, omit the key or use a sensible default (0 for numbers, 1 for floors, " +
		"'first-time' for clientType, empty array for areaRugs). Description: \"" + text + "\""
}

// parsedJob mirrors the response schema. Counts arrive as JSON numbers and
// may be fractional.
type parsedJob struct {
	Distance          *float64 `json:"distance"`
	Sqft              *float64 `json:"sqft"`
	PetTreatmentRooms *float64 `json:"petTreatmentRooms"`
	ClientType        *string  `json:"clientType"`
	LargeItems        *float64 `json:"largeItems"`
	SmallItems        *float64 `json:"smallItems"`
	AreaRugs          []struct {
		Sqft *float64 `json:"sqft"`
	} `json:"areaRugs"`
	Floors          *float64 `json:"floors"`
	Hours           *float64 `json:"hours"`
	InitialDiscount *float64 `json:"initialDiscount"`
}

// ParseJobDescription asks the model for structured job details. Fields the
// model omits, or returns negative, stay unset in the patch. Rugs get fresh
// ids starting at the current time in milliseconds.
func (s *ParserService) ParseJobDescription(ctx context.Context, text string) (models.JobDetailsPatch, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.JobDetailsPatch{}, nil
	}
	if s.model == nil {
		return models.JobDetailsPatch{}, apperrors.ExternalParse(nil, ParseFailedMessage)
	}

	raw, err := s.model.GenerateJSON(ctx, buildParsePrompt(text))
	if err != nil {
		logger.GetLogger().Errorw("❌ ParseJobDescription: model call failed", "error", err)
		return models.JobDetailsPatch{}, apperrors.ExternalParse(err, ParseFailedMessage)
	}

	var parsed parsedJob
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		logger.GetLogger().Errorw("❌ ParseJobDescription: invalid JSON from model", "error", err)
		return models.JobDetailsPatch{}, apperrors.ExternalParse(err, ParseFailedMessage)
	}

	patch := s.toPatch(parsed)
	logger.GetLogger().Infow("✅ ParseJobDescription: description parsed", "chars", len(text))
	return patch, nil
}

func (s *ParserService) toPatch(p parsedJob) models.JobDetailsPatch {
	var patch models.JobDetailsPatch
	patch.Distance = nonNegative(p.Distance)
	patch.Sqft = nonNegative(p.Sqft)
	patch.Hours = nonNegative(p.Hours)
	patch.InitialDiscount = nonNegative(p.InitialDiscount)
	patch.PetTreatmentRooms = count(p.PetTreatmentRooms)
	patch.LargeItems = count(p.LargeItems)
	patch.SmallItems = count(p.SmallItems)
	patch.Floors = count(p.Floors)

	if p.ClientType != nil {
		ct := models.ClientType(strings.ToLower(strings.TrimSpace(*p.ClientType)))
		if ct.Valid() {
			patch.ClientType = &ct
		}
	}

	if p.AreaRugs != nil {
		base := s.now().UnixMilli()
		rugs := make([]models.AreaRug, 0, len(p.AreaRugs))
		for _, r := range p.AreaRugs {
			sqft := nonNegative(r.Sqft)
			if sqft == nil {
				continue
			}
			rugs = append(rugs, models.AreaRug{ID: base + int64(len(rugs)), Sqft: *sqft})
		}
		patch.AreaRugs = &rugs
	}
	return patch
}

func nonNegative(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return nil
	}
	out := *v
	return &out
}

func count(v *float64) *int {
	f := nonNegative(v)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

// stripCodeFence removes a ```json fence some models wrap around JSON output
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
