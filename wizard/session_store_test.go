package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	m := NewMachine(testLanding())
	m.Fields.OrderNumber = "123-1234567-1234567"
	m.Step = StepReview

	require.NoError(t, store.Save(ctx, m))

	loaded, err := store.Load(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, StepReview, loaded.Step)
	assert.Equal(t, "123-1234567-1234567", loaded.Fields.OrderNumber)
	require.NotNil(t, loaded.Target)
	assert.Equal(t, "B0ABCDEFGH", *loaded.Target.ASIN)
}

func TestMemorySessionStoreUnknownID(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)

	_, err := store.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(time.Nanosecond)
	ctx := context.Background()

	m := NewMachine(testLanding())
	require.NoError(t, store.Save(ctx, m))

	time.Sleep(5 * time.Millisecond)

	_, err := store.Load(ctx, m.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreDelete(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	m := NewMachine(testLanding())
	require.NoError(t, store.Save(ctx, m))
	require.NoError(t, store.Delete(ctx, m.ID))

	_, err := store.Load(ctx, m.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionSerializationSurvivesGateState(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	m := NewMachine(testLanding())
	clock := attachClock(m)
	m.Fields.ReviewText = validReview

	_, _, err := m.OpenExternal()
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, m))
	loaded, err := store.Load(ctx, m.ID)
	require.NoError(t, err)

	// The deadline travels with the session, so the gate opens on schedule
	// even when a later request lands on a fresh deserialized machine
	loaded.SetClock(clock.Now)
	assert.True(t, loaded.HasOpenedExternal)
	require.NotNil(t, loaded.CountdownDeadline)
	assert.False(t, loaded.externalGateOpen())

	clock.Advance(CountdownDuration)
	assert.True(t, loaded.externalGateOpen())
}
