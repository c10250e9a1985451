package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"abhaya/internal/sos/countdown"
	"abhaya/internal/sos/lifecycle"
	"abhaya/internal/sos/publisher"
	"abhaya/internal/sos/store"
	id "abhaya/pkg/domain"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/platform/audit"
	"abhaya/pkg/platform/sentinel"
)

const maxLocationName = 256

// Owner is the tourist session raising an alert.
type Owner struct {
	SessionID   id.SessionID
	TouristName string
}

// Start arms a new alert for owner. A session has at most one open alert;
// while one exists Start returns it and created is false.
func (s *Service) Start(ctx context.Context, owner Owner, loc lifecycle.Location) (alert *lifecycle.Alert, created bool, err error) {
	ctx, span := s.tracer.Start(ctx, "sos.Start",
		trace.WithAttributes(attribute.String("session_id", owner.SessionID.String())))
	defer span.End()

	if owner.SessionID.IsNil() {
		return nil, false, dErrors.New(dErrors.CodeUnauthorized, "session required")
	}
	loc.Name = strings.TrimSpace(loc.Name)
	if err := validateLocation(loc); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false, dErrors.New(dErrors.CodeInternal, "sos service is shutting down")
	}
	s.sweepLocked(s.now())
	if openID, ok := s.bySession[owner.SessionID]; ok {
		if e, ok := s.alerts[openID]; ok {
			s.mu.Unlock()
			return e.runner.Snapshot(), false, nil
		}
	}

	a := lifecycle.New(id.NewAlertID(), owner.SessionID, s.now())
	a.TouristName = owner.TouristName
	a.Location = loc
	runner := countdown.New(a,
		countdown.WithTickers(s.tickers),
		countdown.WithClock(s.now),
		countdown.OnTransition(s.onTerminal),
	)
	snapshot := runner.Snapshot()
	s.alerts[a.ID] = &entry{runner: runner, sessionID: owner.SessionID}
	s.bySession[owner.SessionID] = a.ID
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		runner.Run(s.runCtx)
	}()

	span.SetAttributes(attribute.String("alert_id", a.ID.String()))
	s.metrics.IncStarted()
	audit.Log(ctx, s.logger, audit.EventSOSArmed,
		"alert_id", a.ID.String(),
		"session_id", owner.SessionID.String(),
	)
	return snapshot, true, nil
}

// Get returns the current state of an alert owned by sessionID.
func (s *Service) Get(_ context.Context, sessionID id.SessionID, alertID id.AlertID) (*lifecycle.Alert, error) {
	e, err := s.lookup(sessionID, alertID)
	if err != nil {
		return nil, err
	}
	return e.runner.Snapshot(), nil
}

// Cancel abandons an armed alert; nothing about it is kept. Cancelling an
// alert that already dispatched changes nothing and returns its state.
func (s *Service) Cancel(ctx context.Context, sessionID id.SessionID, alertID id.AlertID) (*lifecycle.Alert, error) {
	e, err := s.lookup(sessionID, alertID)
	if err != nil {
		return nil, err
	}
	applied, err := e.runner.Cancel(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel alert")
	}
	if !applied {
		s.logger.DebugContext(ctx, "cancel ignored", "alert_id", alertID.String())
	}
	return e.runner.Snapshot(), nil
}

// SilentDispatch dispatches an armed alert at once, keeping the countdown
// value it had. Alerts no longer armed are returned unchanged.
func (s *Service) SilentDispatch(ctx context.Context, sessionID id.SessionID, alertID id.AlertID) (*lifecycle.Alert, error) {
	e, err := s.lookup(sessionID, alertID)
	if err != nil {
		return nil, err
	}
	applied, err := e.runner.SilentDispatch(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to dispatch alert")
	}
	if !applied {
		s.logger.DebugContext(ctx, "silent dispatch ignored", "alert_id", alertID.String())
	}
	return e.runner.Snapshot(), nil
}

// Close dismisses a dispatched alert from the tourist's view. The dispatch
// record stays on the console. Armed alerts must be cancelled instead.
func (s *Service) Close(ctx context.Context, sessionID id.SessionID, alertID id.AlertID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.alerts[alertID]
	if !ok || e.sessionID != sessionID {
		return dErrors.New(dErrors.CodeNotFound, "alert not found")
	}
	if e.runner.Snapshot().State == lifecycle.StateArmed {
		return dErrors.New(dErrors.CodeConflict, "alert is still counting down")
	}
	s.forgetLocked(alertID, sessionID)

	audit.Log(ctx, s.logger, audit.EventSOSClosed,
		"alert_id", alertID.String(),
		"session_id", sessionID.String(),
	)
	return nil
}

// ListDispatched returns dispatch records for the police console, newest
// first.
func (s *Service) ListDispatched(ctx context.Context, limit int) ([]store.Record, error) {
	records, err := s.records.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}
	if records == nil {
		records = []store.Record{}
	}
	return records, nil
}

// FindDispatched returns the dispatch record of alertID for the console.
func (s *Service) FindDispatched(ctx context.Context, alertID id.AlertID) (*store.Record, error) {
	rec, err := s.records.FindByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load alert")
	}
	return rec, nil
}

// ForgetSession drops the alerts of a session that ended. Dispatched alerts
// are forgotten at once; an armed alert keeps counting down and is forgotten
// when it dispatches. Dispatch records stay on the console.
func (s *Service) ForgetSession(ctx context.Context, sessionID id.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alertID, ok := s.bySession[sessionID]
	if !ok {
		return
	}
	e := s.alerts[alertID]
	if e == nil {
		delete(s.bySession, sessionID)
		return
	}
	if e.terminalAt.IsZero() {
		e.sessionEnded = true
		return
	}
	s.forgetLocked(alertID, sessionID)
	s.logger.DebugContext(ctx, "alert released with its session", "alert_id", alertID.String())
}

// sweepLocked forgets dispatched alerts older than the retention window.
func (s *Service) sweepLocked(now time.Time) {
	for alertID, e := range s.alerts {
		if !e.terminalAt.IsZero() && now.Sub(e.terminalAt) >= s.retention {
			s.forgetLocked(alertID, e.sessionID)
		}
	}
}

func (s *Service) lookup(sessionID id.SessionID, alertID id.AlertID) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
	e, ok := s.alerts[alertID]
	if !ok || e.sessionID != sessionID {
		return nil, dErrors.New(dErrors.CodeNotFound, "alert not found")
	}
	return e, nil
}

func (s *Service) forgetLocked(alertID id.AlertID, sessionID id.SessionID) {
	delete(s.alerts, alertID)
	if s.bySession[sessionID] == alertID {
		delete(s.bySession, sessionID)
	}
}

// onTerminal runs on the runner goroutine once per alert.
func (s *Service) onTerminal(a *lifecycle.Alert) {
	switch a.State {
	case lifecycle.StateCancelled:
		s.mu.Lock()
		s.forgetLocked(a.ID, a.SessionID)
		s.mu.Unlock()

		s.metrics.ObserveOutcome(string(a.State), "", s.now().Sub(a.CreatedAt).Seconds())
		audit.Log(context.Background(), s.logger, audit.EventSOSCancelled,
			"alert_id", a.ID.String(),
			"session_id", a.SessionID.String(),
			"countdown_remaining", a.CountdownRemaining,
		)
	case lifecycle.StateDispatched:
		s.mu.Lock()
		if e, ok := s.alerts[a.ID]; ok {
			if e.sessionEnded {
				s.forgetLocked(a.ID, a.SessionID)
			} else {
				e.terminalAt = s.now()
			}
		}
		s.mu.Unlock()
		s.dispatch(a)
	}
}

// dispatch notifies every channel and stores the record. Failures are logged
// and counted; the alert stays dispatched either way.
func (s *Service) dispatch(a *lifecycle.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "sos.dispatch", trace.WithAttributes(
		attribute.String("alert_id", a.ID.String()),
		attribute.String("trigger", string(a.Trigger)),
	))
	defer span.End()

	ev := publisher.EventFromAlert(a)
	channels := make([]string, 0, len(s.notifiers))
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			s.metrics.IncNotifyFailure(n.Channel())
			span.RecordError(err)
			s.logger.ErrorContext(ctx, "dispatch notification failed",
				"alert_id", ev.AlertID,
				"channel", n.Channel(),
				"error", err,
			)
			continue
		}
		channels = append(channels, n.Channel())
	}

	rec, ok := store.FromAlert(a, channels)
	if !ok {
		span.SetStatus(codes.Error, "alert not dispatched")
		s.logger.ErrorContext(ctx, "dispatch record skipped for alert that is not dispatched",
			"alert_id", ev.AlertID,
			"state", string(a.State),
		)
	} else if err := s.records.Save(ctx, rec); err != nil {
		span.SetStatus(codes.Error, "record not saved")
		s.logger.ErrorContext(ctx, "failed to save dispatch record",
			"alert_id", ev.AlertID,
			"error", err,
		)
	}

	s.metrics.ObserveOutcome(string(a.State), string(a.Trigger), a.DispatchedAt.Sub(a.CreatedAt).Seconds())
	audit.Log(ctx, s.logger, audit.EventSOSDispatched,
		"alert_id", ev.AlertID,
		"code", a.Code,
		"session_id", ev.SessionID,
		"trigger", string(a.Trigger),
		"channels", channels,
	)
}

func validateLocation(loc lifecycle.Location) error {
	if math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90 {
		return dErrors.New(dErrors.CodeInvalidInput, "latitude must be between -90 and 90")
	}
	if math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180 {
		return dErrors.New(dErrors.CodeInvalidInput, "longitude must be between -180 and 180")
	}
	if len(loc.Name) > maxLocationName {
		return dErrors.New(dErrors.CodeInvalidInput, "location name is too long")
	}
	return nil
}
