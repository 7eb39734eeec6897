package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPricingCatalog_IsValid(t *testing.T) {
	catalog := DefaultPricingCatalog()
	require.NoError(t, catalog.Validate())
	assert.Len(t, catalog.Names(), 17)

	for _, name := range catalog.Names() {
		_, ok := catalog.Get(name)
		assert.True(t, ok, name)
	}
}

func TestPricingCatalog_With(t *testing.T) {
	catalog := DefaultPricingCatalog()

	updated, ok := catalog.With(RateBaseRate, 250)
	require.True(t, ok)
	v, _ := updated.Get(RateBaseRate)
	assert.Equal(t, 250.0, v)
	assert.Equal(t, 199.0, catalog.BaseRate, "original is not modified")

	_, ok = catalog.With("FREE_LUNCH", 1)
	assert.False(t, ok)
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, ValidateRate(RateBaseRate, 0))
	assert.NoError(t, ValidateRate(RateMembershipYearDiscount, 1))
	assert.Error(t, ValidateRate(RateBaseRate, -1))
	assert.Error(t, ValidateRate(RateMembershipYearDiscount, 1.5))
	assert.Error(t, ValidateRate("UNKNOWN", 1))
	assert.True(t, IsPercentageRate(RateMembership6MonthDiscount))
	assert.False(t, IsPercentageRate(RateStainSpot))
}

func TestPricingCatalog_JSONUsesRateNames(t *testing.T) {
	data, err := json.Marshal(DefaultPricingCatalog())
	require.NoError(t, err)

	var m map[string]float64
	require.NoError(t, json.Unmarshal(data, &m))
	for _, name := range RateNames() {
		assert.Contains(t, m, name)
	}
	assert.Equal(t, 0.35, m[RateAdditionalSqftRate])
}
