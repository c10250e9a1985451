//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"abhaya/internal/platform/postgres"
	"abhaya/internal/sos/lifecycle"
	"abhaya/internal/sos/store"
	id "abhaya/pkg/domain"
	"abhaya/pkg/platform/sentinel"
	"abhaya/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(postgres.Migrate(s.pg.DB))
	s.store = store.NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "sos_alerts"))
}

func (s *PostgresStoreSuite) record(at time.Time, channels ...string) store.Record {
	a := lifecycle.New(id.NewAlertID(), id.NewSessionID(), at.Add(-3*time.Second))
	a.TouristName = "Asha"
	a.Location = lifecycle.Location{Latitude: 26.9124, Longitude: 75.7873, Name: "Jaipur"}
	s.Require().True(a.Tick(at))
	s.Require().True(a.SilentDispatch(at))
	rec, ok := store.FromAlert(a, channels)
	s.Require().True(ok)
	return rec
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := s.record(at, "kafka", "log")

	s.Require().NoError(s.store.Save(ctx, rec))

	got, err := s.store.FindByID(ctx, rec.AlertID)
	s.Require().NoError(err)
	s.Equal(rec.AlertID, got.AlertID)
	s.Equal(rec.SessionID, got.SessionID)
	s.Equal(rec.Code, got.Code)
	s.Equal(lifecycle.TriggerSilent, got.Trigger)
	s.Equal(4, got.CountdownRemaining)
	s.Equal(rec.Location, got.Location)
	s.Equal([]string{"kafka", "log"}, got.NotifiedChannels)
	s.True(rec.DispatchedAt.Equal(got.DispatchedAt))
	s.True(rec.CreatedAt.Equal(got.CreatedAt))
}

func (s *PostgresStoreSuite) TestDuplicateIsConflict() {
	ctx := context.Background()
	rec := s.record(time.Now().UTC())
	s.Require().NoError(s.store.Save(ctx, rec))
	s.ErrorIs(s.store.Save(ctx, rec), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(context.Background(), id.NewAlertID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListRecent() {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := s.record(base)
	second := s.record(base.Add(time.Minute))
	s.Require().NoError(s.store.Save(ctx, first))
	s.Require().NoError(s.store.Save(ctx, second))

	got, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(second.AlertID, got[0].AlertID)
	s.Empty(got[1].NotifiedChannels)
}
