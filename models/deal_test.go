package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUpRule_Requires(t *testing.T) {
	job := DefaultJobDetails()

	assert.True(t, AlwaysFollowUp().Requires(job))
	assert.False(t, NeverFollowUp().Requires(job))
	assert.False(t, FollowUpRule{}.Requires(job))

	rule := FollowUpWhen(ConditionNoStainGuard)
	assert.True(t, rule.Requires(job))
	job.StainGuardRooms = 2
	assert.False(t, rule.Requires(job))

	upholstery := FollowUpWhen(ConditionNoUpholstery)
	assert.True(t, upholstery.Requires(job))
	job.Armchairs = 1
	assert.False(t, upholstery.Requires(job))
}

func TestFollowUpRule_JSON(t *testing.T) {
	tests := []struct {
		rule FollowUpRule
		want string
	}{
		{AlwaysFollowUp(), `true`},
		{NeverFollowUp(), `false`},
		{FollowUpWhen(ConditionNoPetTreatment), `"when:no_pet_treatment"`},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.rule)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))

		var decoded FollowUpRule
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, tt.rule, decoded)
	}
}

func TestFollowUpRule_UnmarshalLenient(t *testing.T) {
	var r FollowUpRule

	require.NoError(t, json.Unmarshal([]byte(`"TRUE"`), &r))
	assert.Equal(t, AlwaysFollowUp(), r)

	require.NoError(t, json.Unmarshal([]byte(`"no"`), &r))
	assert.Equal(t, NeverFollowUp(), r)

	require.NoError(t, json.Unmarshal([]byte(`"when:moon_phase"`), &r))
	assert.Equal(t, AlwaysFollowUp(), r)

	require.NoError(t, json.Unmarshal([]byte(`null`), &r))
	assert.Equal(t, NeverFollowUp(), r)

	assert.Error(t, json.Unmarshal([]byte(`{}`), &r))
}

func TestResponseDetails_JSON(t *testing.T) {
	resp := []DealResponse{
		{ID: "a", Accepted: true, Details: NumberDetails(3)},
		{ID: "b", Details: TextDetails("Instagram")},
		{ID: "c"},
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"a","accepted":true,"details":3},
		{"id":"b","accepted":false,"details":"Instagram"},
		{"id":"c","accepted":false,"details":""}
	]`, string(data))

	var decoded []DealResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	n, ok := decoded[0].Details.Number()
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)
	assert.Equal(t, "Instagram", decoded[1].Details.String())
	assert.True(t, decoded[2].Details.IsEmpty())
}

func TestNewDealResponses(t *testing.T) {
	deals := []Deal{{ID: "x"}, {ID: "y"}}

	responses := NewDealResponses(deals)

	assert.Equal(t, []DealResponse{{ID: "x"}, {ID: "y"}}, responses)
	assert.Empty(t, NewDealResponses(nil))
}

func TestParseFollowUpType(t *testing.T) {
	assert.Equal(t, FollowUpNumber, ParseFollowUpType(" Number "))
	assert.Equal(t, FollowUpUpholstery, ParseFollowUpType("upholstery"))
	assert.Equal(t, FollowUpText, ParseFollowUpType("TEXT"))
	assert.Equal(t, FollowUpNone, ParseFollowUpType("slider"))
}
