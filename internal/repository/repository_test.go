package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shiftboard/internal/docstore"
	"github.com/spec-kit/shiftboard/internal/domain"
)

func TestDayScheduleRoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewDayScheduleRepository(docstore.NewMemory())

	saved := &domain.DaySchedule{
		DateKey:         "2026-01-05",
		Members:         []domain.ExternalID{"2", "1", "3"},
		RotationPointer: domain.NoRotationPointer,
		UpdatedAt:       time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Replace(ctx, saved))

	got, err := repo.GetByDate(ctx, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, saved.Members, got.Members)
	assert.Equal(t, -1, got.RotationPointer)
	assert.True(t, saved.UpdatedAt.Equal(got.UpdatedAt))

	_, err = repo.GetByDate(ctx, "2026-01-06")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestDayScheduleDecodesNumericMembers(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	require.NoError(t, store.Put(ctx, docstore.CollectionDaySchedules, "2026-01-07", docstore.Document{
		"members": []any{12, " 7 "},
	}))

	all, err := NewDayScheduleRepository(store).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2026-01-07", all[0].DateKey)
	assert.Equal(t, []domain.ExternalID{"12", "7"}, all[0].Members)
}

func TestAgentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAgentRepository(docstore.NewMemory())

	bia := &domain.Agent{Name: "Bia", ExternalID: "2"}
	ana := &domain.Agent{Name: "Ana", Email: "ana@example.com", ExternalID: "1"}
	require.NoError(t, repo.Create(ctx, bia))
	require.NoError(t, repo.Create(ctx, ana))
	assert.NotEmpty(t, ana.ID)

	list, err := repo.ListByName(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana", list[0].Name)
	assert.Equal(t, ana.ID, list[0].ID)

	require.NoError(t, repo.Delete(ctx, ana.ID))
	_, err = repo.GetByID(ctx, ana.ID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestLeadRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	for _, d := range []docstore.Document{
		{"dateKey": "2026-01-10", "timestamp": "2026-01-10T09:00:00Z", "assignedMemberId": 1, "leadId": "a"},
		{"dateKey": "2026-01-10", "timestamp": "2026-01-10T11:00:00Z", "assignedMemberId": "2", "leadId": "b"},
		{"dateKey": "2026-01-11", "timestamp": "2026-01-11T08:00:00Z", "assignedMemberId": "1", "leadId": "c"},
	} {
		_, err := store.Add(ctx, docstore.CollectionLeadRecords, d)
		require.NoError(t, err)
	}
	repo := NewLeadRepository(store)

	day, err := repo.List(ctx, LeadFilter{StartDateKey: "2026-01-10", EndDateKey: "2026-01-10"})
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "b", day[0].LeadID)
	assert.Equal(t, domain.ExternalID("1"), day[1].AssignedMemberID)

	all, err := repo.List(ctx, LeadFilter{StartDateKey: "2026-01-01", EndDateKey: "2026-01-31"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].LeadID)
}

func TestLeadRepositoryOrdersByInstant(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	base := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	for _, lead := range []domain.LeadRecord{
		{DateKey: "2026-01-10", Timestamp: base, AssignedMemberID: "1", LeadID: "older"},
		{DateKey: "2026-01-10", Timestamp: base.Add(500 * time.Millisecond), AssignedMemberID: "1", LeadID: "newer"},
		{DateKey: "2026-01-10", Timestamp: time.Date(2026, 1, 10, 8, 0, 0, 0, time.FixedZone("BRT", -3*3600)), AssignedMemberID: "2", LeadID: "newest_offset"},
		{DateKey: "2026-01-09", Timestamp: base.Add(24 * time.Hour), AssignedMemberID: "2", LeadID: "previous_day"},
	} {
		doc, err := docstore.Encode(lead)
		require.NoError(t, err)
		_, err = store.Add(ctx, docstore.CollectionLeadRecords, doc)
		require.NoError(t, err)
	}

	got, err := NewLeadRepository(store).List(ctx, LeadFilter{StartDateKey: "2026-01-01", EndDateKey: "2026-01-31"})
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, lead := range got {
		ids = append(ids, lead.LeadID)
	}
	assert.Equal(t, []string{"newest_offset", "newer", "older", "previous_day"}, ids)
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(docstore.NewMemory())

	u := &domain.User{Email: " Admin@Example.com", PasswordHash: "x", Role: domain.RoleAdmin}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
