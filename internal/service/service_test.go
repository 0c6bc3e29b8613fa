package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shiftboard/internal/calendar"
	"github.com/spec-kit/shiftboard/internal/config"
	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/domain"
	"github.com/spec-kit/shiftboard/internal/events"
	"github.com/spec-kit/shiftboard/internal/leads"
	"github.com/spec-kit/shiftboard/internal/repository"
	"github.com/spec-kit/shiftboard/internal/roster"
	apperrors "github.com/spec-kit/shiftboard/pkg/util/errorutil"
)

var (
	admin      = &domain.User{ID: "u-admin", Role: domain.RoleAdmin}
	otherAdmin = &domain.User{ID: "u-admin-2", Role: domain.RoleAdmin}
	consultant = &domain.User{ID: "u-consultant", Role: domain.RoleConsultant}
)

type fixture struct {
	store      *docstore.Memory
	dispatcher events.Dispatcher
	cache      *roster.Cache
	agents     repository.AgentRepository
	schedules  repository.DayScheduleRepository
	rosterSvc  *RosterService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := docstore.NewMemory()
	agents := repository.NewAgentRepository(store)
	cache := roster.NewCache(agents, "pt-BR", nil)
	dispatcher := events.NewInMemoryDispatcher()
	f := &fixture{
		store:      store,
		dispatcher: dispatcher,
		cache:      cache,
		agents:     agents,
		schedules:  repository.NewDayScheduleRepository(store),
	}
	f.rosterSvc = NewRosterService(RosterDependencies{AgentRepo: agents, Cache: cache, Dispatcher: dispatcher})
	return f
}

func (f *fixture) addAgent(t *testing.T, name string, id any) *domain.Agent {
	t.Helper()
	agent, err := f.rosterSvc.AddAgent(context.Background(), admin, AgentInput{Name: name, ExternalID: id})
	require.NoError(t, err)
	return agent
}

func codeOf(err error) string {
	return apperrors.CodeOf(err)
}

func TestAuthServiceLoginAndBootstrap(t *testing.T) {
	ctx := context.Background()
	users := repository.NewUserRepository(docstore.NewMemory())
	svc := NewAuthService(config.AuthConfig{JWTSecret: "secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost}, users, nil)

	require.NoError(t, svc.EnsureAdmin(ctx, "Admin@Example.com", "password123"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "ignored-password"))

	user, token, exp, err := svc.Login(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.True(t, exp.After(time.Now()))

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	_, _, _, err = svc.Login(ctx, "admin@example.com", "wrong-password")
	assert.Equal(t, "UNAUTHORIZED", codeOf(err))
	_, _, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.Equal(t, "UNAUTHORIZED", codeOf(err))
}

func TestAuthServiceCreateUser(t *testing.T) {
	ctx := context.Background()
	users := repository.NewUserRepository(docstore.NewMemory())
	svc := NewAuthService(config.AuthConfig{JWTSecret: "secret", BcryptCost: bcrypt.MinCost}, users, nil)

	_, err := svc.CreateUser(ctx, consultant, "c@example.com", "password123", domain.RoleConsultant)
	assert.Equal(t, "FORBIDDEN", codeOf(err))

	created, err := svc.CreateUser(ctx, admin, "c@example.com", "password123", domain.RoleConsultant)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = svc.CreateUser(ctx, admin, "C@example.com", "password123", domain.RoleConsultant)
	assert.Equal(t, "CONFLICT", codeOf(err))
	_, err = svc.CreateUser(ctx, admin, "d@example.com", "short", domain.RoleConsultant)
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = svc.CreateUser(ctx, admin, "e@example.com", "password123", domain.Role("owner"))
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
}

func TestRosterServiceAddAgent(t *testing.T) {
	f := newFixture(t)
	var published []events.Event
	f.dispatcher.Subscribe(events.EventRosterChanged, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	agent := f.addAgent(t, "Bia", 2)
	assert.Equal(t, domain.ExternalID("2"), agent.ExternalID)
	_, ok := f.cache.Lookup("2")
	assert.True(t, ok)
	require.Len(t, published, 1)
	assert.Equal(t, events.RosterAgentAdded, published[0].Payload.(events.RosterChangedPayload).Kind)
	assert.Equal(t, admin.ID, published[0].Actor.UserID)

	_, err := f.rosterSvc.AddAgent(context.Background(), admin, AgentInput{Name: "Bea", ExternalID: " 2 "})
	assert.Equal(t, "CONFLICT", codeOf(err))

	_, err = f.rosterSvc.AddAgent(context.Background(), admin, AgentInput{Name: "  ", ExternalID: "9"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = f.rosterSvc.AddAgent(context.Background(), admin, AgentInput{Name: "Caio"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	_, err = f.rosterSvc.AddAgent(context.Background(), consultant, AgentInput{Name: "Caio", ExternalID: "3"})
	assert.Equal(t, "FORBIDDEN", codeOf(err))
	_, err = f.rosterSvc.AddAgent(context.Background(), nil, AgentInput{Name: "Caio", ExternalID: "3"})
	assert.Equal(t, "UNAUTHORIZED", codeOf(err))
}

func TestRosterServiceDeleteAgentKeepsSchedules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ana := f.addAgent(t, "Ana", "1")
	f.addAgent(t, "Bia", "2")

	require.NoError(t, f.schedules.Replace(ctx, &domain.DaySchedule{
		DateKey: "2026-01-05", Members: []domain.ExternalID{"1", "2"}, RotationPointer: -1,
	}))

	require.NoError(t, f.rosterSvc.DeleteAgent(ctx, admin, ana.ID))
	_, ok := f.cache.Lookup("1")
	assert.False(t, ok)

	sched, err := f.schedules.GetByDate(ctx, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"1", "2"}, sched.Members)

	err = f.rosterSvc.DeleteAgent(ctx, admin, ana.ID)
	assert.Equal(t, "NOT_FOUND", codeOf(err))

	listed, err := f.rosterSvc.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Bia", listed[0].Name)
}

type failingWriter struct {
	repository.DayScheduleRepository
	mu   sync.Mutex
	fail bool
}

func (w *failingWriter) Replace(ctx context.Context, s *domain.DaySchedule) error {
	w.mu.Lock()
	fail := w.fail
	w.mu.Unlock()
	if fail {
		return errors.New("store offline")
	}
	return w.DayScheduleRepository.Replace(ctx, s)
}

func TestScheduleServiceEditorLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAgent(t, "Ana", "1")
	f.addAgent(t, "Bia", "2")
	f.addAgent(t, "Caio", "3")

	writer := &failingWriter{DayScheduleRepository: f.schedules}
	svc := NewScheduleService(ScheduleDependencies{ScheduleRepo: writer, Roster: f.cache, Dispatcher: f.dispatcher})

	var saved []events.ScheduleSavedPayload
	f.dispatcher.Subscribe(events.EventScheduleSaved, func(_ context.Context, e events.Event) error {
		saved = append(saved, e.Payload.(events.ScheduleSavedPayload))
		return nil
	})

	_, err := svc.GetSchedule(ctx, "2026-01-05")
	assert.Equal(t, "NOT_FOUND", codeOf(err))

	view, err := svc.OpenEditor(ctx, admin, "2026-01-05")
	require.NoError(t, err)
	assert.Empty(t, view.Queue)
	assert.Len(t, view.Partition.Available, 3)

	_, err = svc.AddMember(admin, view.SessionID, 2)
	require.NoError(t, err)
	view, err = svc.AddMember(admin, view.SessionID, "1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"2", "1"}, view.Queue)

	_, err = svc.AddMember(admin, view.SessionID, "2")
	assert.Equal(t, "CONFLICT", codeOf(err))
	_, err = svc.AddMember(admin, view.SessionID, "99")
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = svc.RemoveMember(admin, view.SessionID, 5)
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = svc.View(otherAdmin, view.SessionID)
	assert.Equal(t, "FORBIDDEN", codeOf(err))

	writer.fail = true
	_, err = svc.Save(ctx, admin, view.SessionID)
	assert.Equal(t, "PERSISTENCE_FAILED", codeOf(err))
	view, err = svc.View(admin, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"2", "1"}, view.Queue)
	assert.Empty(t, saved)

	writer.fail = false
	sched, err := svc.Save(ctx, admin, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"2", "1"}, sched.Members)
	assert.Equal(t, domain.NoRotationPointer, sched.RotationPointer)
	require.Len(t, saved, 1)
	assert.Equal(t, "2026-01-05", saved[0].DateKey)

	_, err = svc.View(admin, view.SessionID)
	assert.Equal(t, "NOT_FOUND", codeOf(err))

	stored, err := svc.GetSchedule(ctx, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"2", "1"}, stored.Members)

	reopened, err := svc.OpenEditor(ctx, admin, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"2", "1"}, reopened.Queue)
	require.NoError(t, svc.Cancel(admin, reopened.SessionID))
	_, err = svc.View(admin, reopened.SessionID)
	assert.Equal(t, "NOT_FOUND", codeOf(err))
}

func TestScheduleServiceRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewScheduleService(ScheduleDependencies{ScheduleRepo: f.schedules, Roster: f.cache})

	_, err := svc.OpenEditor(ctx, admin, "2026-02-30")
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = svc.OpenEditor(ctx, consultant, "2026-02-03")
	assert.Equal(t, "FORBIDDEN", codeOf(err))
	_, err = svc.GetSchedule(ctx, "20260203")
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = svc.View(admin, "missing")
	assert.Equal(t, "NOT_FOUND", codeOf(err))
}

func TestScheduleServiceExpireSessions(t *testing.T) {
	f := newFixture(t)
	svc := NewScheduleService(ScheduleDependencies{ScheduleRepo: f.schedules, Roster: f.cache})

	view, err := svc.OpenEditor(context.Background(), admin, "2026-03-01")
	require.NoError(t, err)

	assert.Equal(t, 0, svc.ExpireSessions(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1, svc.ExpireSessions(time.Now().Add(time.Second)))
	_, err = svc.View(admin, view.SessionID)
	assert.Equal(t, "NOT_FOUND", codeOf(err))
}

func TestScheduleServiceExpiresIdleSessionsOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAgent(t, "Ana Souza", "1")
	svc := NewScheduleService(ScheduleDependencies{ScheduleRepo: f.schedules, Roster: f.cache})
	opened := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return opened }

	active, err := svc.OpenEditor(ctx, admin, "2026-03-01")
	require.NoError(t, err)
	idle, err := svc.OpenEditor(ctx, admin, "2026-03-02")
	require.NoError(t, err)

	svc.now = func() time.Time { return opened.Add(3 * time.Hour) }
	_, err = svc.AddMember(admin, active.SessionID, "1")
	require.NoError(t, err)

	// Two-hour TTL measured at 11:30: only the untouched session is stale.
	assert.Equal(t, 1, svc.ExpireSessions(opened.Add(150*time.Minute)))
	_, err = svc.View(admin, idle.SessionID)
	assert.Equal(t, "NOT_FOUND", codeOf(err))

	view, err := svc.View(admin, active.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ExternalID{"1"}, view.Queue)
	_, err = svc.Save(ctx, admin, active.SessionID)
	require.NoError(t, err)
}

func TestCalendarServiceInvalidatesOnEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAgent(t, "Ana Souza", "1")
	calSvc := NewCalendarService(calendar.NewAggregator(f.schedules, f.cache), nil)
	calSvc.RegisterHandlers(f.dispatcher)
	schedSvc := NewScheduleService(ScheduleDependencies{ScheduleRepo: f.schedules, Roster: f.cache, Dispatcher: f.dispatcher})

	view, err := calSvc.Month(ctx, 2026, 1)
	require.NoError(t, err)
	assert.False(t, view.Days[4].HasAssignment)

	session, err := schedSvc.OpenEditor(ctx, admin, "2026-01-05")
	require.NoError(t, err)
	_, err = schedSvc.AddMember(admin, session.SessionID, "1")
	require.NoError(t, err)
	_, err = schedSvc.Save(ctx, admin, session.SessionID)
	require.NoError(t, err)

	view, err = calSvc.Month(ctx, 2026, 1)
	require.NoError(t, err)
	assert.True(t, view.Days[4].HasAssignment)
	assert.Equal(t, []string{"Ana"}, view.Days[4].Names)

	f.addAgent(t, "Zeca", "2")
	require.NoError(t, f.rosterSvc.DeleteAgent(ctx, admin, f.cache.Snapshot()[0].ID))
	view, err = calSvc.Month(ctx, 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID: 1"}, view.Days[4].Names)

	_, err = calSvc.Month(ctx, 2026, 13)
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
}

func TestCalendarServiceReloadsAfterRosterRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	calSvc := NewCalendarService(calendar.NewAggregator(f.schedules, f.cache), nil)
	calSvc.RegisterHandlers(f.dispatcher)

	require.NoError(t, f.schedules.Replace(ctx, &domain.DaySchedule{
		DateKey: "2026-01-05", Members: []domain.ExternalID{"7"}, RotationPointer: -1,
	}))
	view, err := calSvc.Month(ctx, 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID: 7"}, view.Days[4].Names)

	// Written by another process: only an explicit refresh can see it.
	require.NoError(t, f.agents.Create(ctx, &domain.Agent{Name: "Carla Souza", ExternalID: "7"}))
	require.NoError(t, f.schedules.Replace(ctx, &domain.DaySchedule{
		DateKey: "2026-01-06", Members: []domain.ExternalID{"7"}, RotationPointer: -1,
	}))
	_, err = f.rosterSvc.Refresh(ctx)
	require.NoError(t, err)

	view, err = calSvc.Month(ctx, 2026, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Carla"}, view.Days[4].Names)
	assert.Equal(t, []string{"Carla"}, view.Days[5].Names)
}

type flakyAgents struct {
	repository.AgentRepository
	mu        sync.Mutex
	listCalls int
	failFrom  int
}

func (a *flakyAgents) ListByName(ctx context.Context) ([]domain.Agent, error) {
	a.mu.Lock()
	a.listCalls++
	fail := a.failFrom > 0 && a.listCalls >= a.failFrom
	a.mu.Unlock()
	if fail {
		return nil, errors.New("store offline")
	}
	return a.AgentRepository.ListByName(ctx)
}

func TestRosterServicePublishesWhenReloadFailsAfterWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agents := &flakyAgents{AgentRepository: f.agents}
	cache := roster.NewCache(agents, "pt-BR", nil)
	svc := NewRosterService(RosterDependencies{AgentRepo: agents, Cache: cache, Dispatcher: f.dispatcher})

	var kinds []events.RosterChangeKind
	f.dispatcher.Subscribe(events.EventRosterChanged, func(_ context.Context, e events.Event) error {
		kinds = append(kinds, e.Payload.(events.RosterChangedPayload).Kind)
		return nil
	})

	// The duplicate check reload succeeds, the reload after the write fails.
	agents.failFrom = 2
	_, err := svc.AddAgent(ctx, admin, AgentInput{Name: "Ana", ExternalID: "1"})
	assert.Equal(t, "PERSISTENCE_FAILED", codeOf(err))
	assert.Equal(t, []events.RosterChangeKind{events.RosterAgentAdded}, kinds)

	stored, err := f.agents.ListByName(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	err = svc.DeleteAgent(ctx, admin, stored[0].ID)
	assert.Equal(t, "PERSISTENCE_FAILED", codeOf(err))
	assert.Equal(t, []events.RosterChangeKind{events.RosterAgentAdded, events.RosterAgentDeleted}, kinds)
}

func TestLeadServiceSummaryAndDrillDown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAgent(t, "Ana", "1")
	for key, doc := range map[string]docstore.Document{
		"l1": {"dateKey": "2026-01-02", "timestamp": "2026-01-02T10:00:00Z", "assignedMemberId": 1, "leadId": "a"},
		"l2": {"dateKey": "2026-01-03", "timestamp": "2026-01-03T09:30:00Z", "assignedMemberId": "1", "leadId": "b"},
		"l3": {"dateKey": "2026-01-03", "timestamp": "2026-01-03T11:00:00Z", "assignedMemberId": "7", "leadId": "c"},
		"l4": {"dateKey": "2026-02-01", "timestamp": "2026-02-01T11:00:00Z", "assignedMemberId": "7", "leadId": "d"},
	} {
		require.NoError(t, f.store.Put(ctx, docstore.CollectionLeadRecords, key, doc))
	}
	svc := NewLeadService(leads.NewAggregator(repository.NewLeadRepository(f.store), f.cache, time.UTC), nil)

	report, err := svc.Summary(ctx, leads.Query{StartDateKey: "2026-01-01", EndDateKey: "2026-01-31"})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	require.Len(t, report.Groups, 2)
	assert.Equal(t, "Ana", report.Groups[0].Name)
	assert.Equal(t, 2, report.Groups[0].Count)
	assert.True(t, report.Groups[1].Orphaned)

	records, err := svc.MemberRecords(ctx, leads.Query{StartDateKey: "2026-01-01", EndDateKey: "2026-01-31"}, " 1 ")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "03/01/2026 09:30:00", records[0].FormattedTimestamp)

	records, err = svc.MemberRecords(ctx, leads.Query{StartDateKey: "2026-01-01", EndDateKey: "2026-01-31"}, "42")
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = svc.Summary(ctx, leads.Query{StartDateKey: "2026-02-01", EndDateKey: "2026-01-01"})
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
	_, err = svc.MemberRecords(ctx, leads.Query{}, " ")
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))
}

func TestNotificationServicePostsScheduleSaved(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(config.NotificationConfig{WebhookURL: srv.URL, WebhookTimeoutSeconds: 2}, dispatcher, nil)
	require.True(t, svc.Enabled())
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:      "evt-1",
		Type:    events.EventScheduleSaved,
		Payload: events.ScheduleSavedPayload{DateKey: "2026-01-05", Members: []domain.ExternalID{"2"}},
	})
	require.NoError(t, err)

	select {
	case body := <-received:
		assert.Equal(t, "schedule_saved", body["event"])
		assert.Equal(t, "evt-1", body["event_id"])
		payload := body["payload"].(map[string]any)
		assert.Equal(t, "2026-01-05", payload["date_key"])
	case <-time.After(3 * time.Second):
		t.Fatal("webhook not called")
	}
}

func TestNotificationServiceSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(config.NotificationConfig{WebhookURL: srv.URL}, dispatcher, nil).RegisterHandlers()
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventScheduleSaved}))

	assert.False(t, NewNotificationService(config.NotificationConfig{}, dispatcher, nil).Enabled())
}
