package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abhaya/internal/sos/lifecycle"
	id "abhaya/pkg/domain"
	"abhaya/pkg/platform/sentinel"
)

func dispatchedAlert(t *testing.T, at time.Time) *lifecycle.Alert {
	t.Helper()
	a := lifecycle.New(id.NewAlertID(), id.NewSessionID(), at.Add(-5*time.Second))
	a.TouristName = "Asha"
	a.Location = lifecycle.Location{Latitude: 26.9124, Longitude: 75.7873, Name: "Jaipur"}
	require.True(t, a.SilentDispatch(at))
	return a
}

func dispatchedRecord(t *testing.T, at time.Time, channels ...string) Record {
	t.Helper()
	rec, ok := FromAlert(dispatchedAlert(t, at), channels)
	require.True(t, ok)
	return rec
}

func TestFromAlert(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("dispatched alert becomes a record", func(t *testing.T) {
		a := dispatchedAlert(t, at)
		channels := []string{"kafka"}
		rec, ok := FromAlert(a, channels)
		require.True(t, ok)
		assert.Equal(t, a.ID, rec.AlertID)
		assert.Equal(t, a.Code, rec.Code)
		assert.Equal(t, lifecycle.TriggerSilent, rec.Trigger)
		assert.Equal(t, at, rec.DispatchedAt)
		assert.Equal(t, "Jaipur", rec.Location.Name)

		channels[0] = "changed"
		assert.Equal(t, []string{"kafka"}, rec.NotifiedChannels)
	})

	t.Run("armed and cancelled alerts are not recorded", func(t *testing.T) {
		armed := lifecycle.New(id.NewAlertID(), id.NewSessionID(), at)
		_, ok := FromAlert(armed, nil)
		assert.False(t, ok)

		require.True(t, armed.Cancel())
		_, ok = FromAlert(armed, nil)
		assert.False(t, ok)

		_, ok = FromAlert(nil, nil)
		assert.False(t, ok)
	})
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("save and find", func(t *testing.T) {
		s := NewInMemoryStore()
		rec := dispatchedRecord(t, base, "log")
		require.NoError(t, s.Save(ctx, rec))

		got, err := s.FindByID(ctx, rec.AlertID)
		require.NoError(t, err)
		assert.Equal(t, rec, *got)
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		s := NewInMemoryStore()
		rec := dispatchedRecord(t, base)
		require.NoError(t, s.Save(ctx, rec))
		assert.ErrorIs(t, s.Save(ctx, rec), sentinel.ErrConflict)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := NewInMemoryStore().FindByID(ctx, id.NewAlertID())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("list is newest first and limited", func(t *testing.T) {
		s := NewInMemoryStore()
		var ids []id.AlertID
		for i := range 3 {
			rec := dispatchedRecord(t, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, s.Save(ctx, rec))
			ids = append(ids, rec.AlertID)
		}

		got, err := s.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, ids[2], got[0].AlertID)
		assert.Equal(t, ids[1], got[1].AlertID)

		all, err := s.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
