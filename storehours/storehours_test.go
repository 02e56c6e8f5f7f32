package storehours_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/storehours"
)

type countingStore struct {
	hours storehours.Hours
	loads int
	saves int
}

func (s *countingStore) LoadStoreHours(context.Context) (storehours.Hours, error) {
	s.loads++
	return s.hours, nil
}

func (s *countingStore) SaveStoreHours(_ context.Context, h storehours.Hours) error {
	s.saves++
	s.hours = h
	return nil
}

func TestCache_ReadThroughAndInvalidateOnSave(t *testing.T) {
	store := &countingStore{hours: storehours.Default()}
	cache := storehours.NewCache(store, nil)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads, "second Get served from cache")

	updated := storehours.Default()
	updated[time.Sunday].Closed = true
	require.NoError(t, cache.Save(ctx, updated))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.loads, "Save forces a reload")
	assert.True(t, got.For(time.Sunday).Closed)
}

func TestCache_SaveRejectsInvalidHours(t *testing.T) {
	store := &countingStore{hours: storehours.Default()}
	cache := storehours.NewCache(store, nil)

	bad := storehours.Default()
	bad[time.Monday].Close = "08:00"

	err := cache.Save(context.Background(), bad)
	assert.True(t, errors.Is(err, generic.ErrInvalidRequest))
	assert.Equal(t, 0, store.saves)
}

func TestHours_Validate(t *testing.T) {
	h := storehours.Uniform("06:30", "14:00")
	require.NoError(t, h.Validate())
	assert.Equal(t, 450, h.OpenMinutes(time.Wednesday))

	h[time.Tuesday].Open = "7am"
	assert.Error(t, h.Validate())

	closed := storehours.Default()
	closed[time.Saturday] = storehours.Day{Weekday: time.Saturday, Closed: true}
	require.NoError(t, closed.Validate())
	assert.Equal(t, 0, closed.OpenMinutes(time.Saturday))

	misplaced := storehours.Default()
	misplaced[0].Weekday = time.Monday
	assert.Error(t, misplaced.Validate())
}
