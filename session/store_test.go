package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quick-quote/errors"
	"quick-quote/models"
	"quick-quote/pricing"
)

func sampleState(t *testing.T) State {
	return mustReduce(t, NewState(),
		UpdateJobDetail{Field: "sqft", Value: 640},
		AddRug{Rug: models.AreaRug{ID: 1700000000000, Sqft: 24}},
		ToggleDeal{DealID: pricing.DealCarpetRugsStainGuard, Accepted: true},
		SubmitFollowUp{DealID: pricing.DealCarpetRugsStainGuard, Answer: FollowUpAnswer{Number: floatPtr(2)}},
		ToggleDeal{DealID: pricing.DealSocialMedia, Accepted: true},
		SubmitFollowUp{DealID: pricing.DealSocialMedia, Answer: FollowUpAnswer{Text: "Instagram"}},
		SetStep{Step: StepSummary},
	)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	state := sampleState(t)

	require.NoError(t, store.Save(ctx, "abc", state))
	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	got.JobDetails.AreaRugs[0].Sqft = 1
	again, _ := store.Get(ctx, "abc")
	assert.Equal(t, 24.0, again.JobDetails.AreaRugs[0].Sqft, "stored state is isolated from callers")

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.True(t, apperrors.Is(err, apperrors.NotFoundError))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "abc", NewState()))
	assert.Equal(t, 1, store.Len())

	now = now.Add(2 * time.Minute)
	_, err := store.Get(ctx, "abc")
	assert.True(t, apperrors.Is(err, apperrors.NotFoundError))
	assert.Equal(t, 0, store.Len())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, 30*time.Minute)
	ctx := context.Background()
	state := sampleState(t)

	require.NoError(t, store.Save(ctx, "abc", state))
	assert.Equal(t, 30*time.Minute, mr.TTL("quickquote:session:abc"))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, state, got)
	assert.Equal(t, got.Quote(), state.Quote())

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.True(t, apperrors.Is(err, apperrors.NotFoundError))
}

func TestRedisStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", NewState()))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "abc")
	assert.True(t, apperrors.Is(err, apperrors.NotFoundError))
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Minute)
	require.NoError(t, mr.Set("quickquote:session:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, apperrors.Is(err, apperrors.NotFoundError))
}
