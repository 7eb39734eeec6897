package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quick-quote/errors"
	"quick-quote/models"
)

type fakeModel struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeModel) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func newTestParser(m StructuredModel) *ParserService {
	p := NewParserService(m)
	p.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return p
}

func TestParseJobDescription(t *testing.T) {
	model := &fakeModel{response: `{
		"distance": 18, "sqft": 820.5, "petTreatmentRooms": 2, "clientType": "repeat",
		"largeItems": 1.6, "floors": 2, "areaRugs": [{"sqft": 24}, {"sqft": 12}]
	}`}
	p := newTestParser(model)

	patch, err := p.ParseJobDescription(context.Background(), "  Two-story house, 820 sqft, two rugs  ")
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	assert.True(t, strings.HasSuffix(model.prompts[0], `Description: "Two-story house, 820 sqft, two rugs"`))

	require.NotNil(t, patch.Distance)
	assert.Equal(t, 18.0, *patch.Distance)
	assert.Equal(t, 820.5, *patch.Sqft)
	assert.Equal(t, 2, *patch.PetTreatmentRooms)
	assert.Equal(t, 2, *patch.LargeItems, "counts are rounded")
	assert.Equal(t, models.ClientRepeat, *patch.ClientType)
	assert.Nil(t, patch.SmallItems)
	assert.Nil(t, patch.Hours)

	require.NotNil(t, patch.AreaRugs)
	assert.Equal(t, []models.AreaRug{{ID: 1700000000000, Sqft: 24}, {ID: 1700000000001, Sqft: 12}}, *patch.AreaRugs)

	job := patch.Apply(models.DefaultJobDetails())
	assert.NoError(t, job.Validate())
	assert.Equal(t, 2, job.Floors)
}

func TestParseJobDescription_DropsInvalidValues(t *testing.T) {
	p := newTestParser(&fakeModel{response: "```json\n{\"sqft\": -10, \"clientType\": \"vip\", \"areaRugs\": [{\"sqft\": -1}, {}]}\n```"})

	patch, err := p.ParseJobDescription(context.Background(), "something")
	require.NoError(t, err)
	assert.Nil(t, patch.Sqft)
	assert.Nil(t, patch.ClientType)
	require.NotNil(t, patch.AreaRugs)
	assert.Empty(t, *patch.AreaRugs)
}

func TestParseJobDescription_EmptyText(t *testing.T) {
	model := &fakeModel{}
	p := newTestParser(model)

	patch, err := p.ParseJobDescription(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, models.JobDetailsPatch{}, patch)
	assert.Empty(t, model.prompts, "model is not called")
}

func TestParseJobDescription_Failures(t *testing.T) {
	ctx := context.Background()
	cases := map[string]*ParserService{
		"model error":  newTestParser(&fakeModel{err: errors.New("quota exceeded")}),
		"invalid json": newTestParser(&fakeModel{response: "I think it is 500 sqft"}),
		"no model":     NewParserService(nil),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.ParseJobDescription(ctx, "500 sqft living room")
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ExternalParseError))
			assert.Equal(t, ParseFailedMessage, err.(*apperrors.AppError).Message)
		})
	}
}
