package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventmanagement/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mutate      func(in *domain.CreateEventInput)
		organizerID func(f *fixture) int64
		wantErr     error
	}{
		{name: "success", mutate: func(in *domain.CreateEventInput) {}},
		{name: "start equal to now", mutate: func(in *domain.CreateEventInput) {
			in.StartDate = testNow
			in.EndDate = testNow.Add(time.Hour)
		}, wantErr: domain.ErrInvalidInput},
		{name: "start within the current second", mutate: func(in *domain.CreateEventInput) {
			in.StartDate = testNow.Add(500 * time.Millisecond)
			in.EndDate = testNow.Add(time.Hour)
		}, wantErr: domain.ErrInvalidInput},
		{name: "start one second ahead", mutate: func(in *domain.CreateEventInput) {
			in.StartDate = testNow.Add(time.Second)
			in.EndDate = testNow.Add(time.Hour)
		}},
		{name: "end before start", mutate: func(in *domain.CreateEventInput) {
			in.EndDate = in.StartDate.Add(-time.Minute)
		}, wantErr: domain.ErrInvalidInput},
		{name: "end equal to start", mutate: func(in *domain.CreateEventInput) {
			in.EndDate = in.StartDate
		}},
		{name: "capacity zero", mutate: func(in *domain.CreateEventInput) { in.MaxCapacity = 0 }, wantErr: domain.ErrInvalidInput},
		{name: "capacity above limit", mutate: func(in *domain.CreateEventInput) { in.MaxCapacity = 10001 }, wantErr: domain.ErrInvalidInput},
		{name: "capacity at limit", mutate: func(in *domain.CreateEventInput) { in.MaxCapacity = 10000 }},
		{name: "negative price", mutate: func(in *domain.CreateEventInput) { in.TicketPrice = -1 }, wantErr: domain.ErrInvalidInput},
		{name: "price above column range", mutate: func(in *domain.CreateEventInput) { in.TicketPrice = 1e9 }, wantErr: domain.ErrInvalidInput},
		{name: "price with fractional cents", mutate: func(in *domain.CreateEventInput) { in.TicketPrice = 19.995 }, wantErr: domain.ErrInvalidInput},
		{name: "price at column maximum", mutate: func(in *domain.CreateEventInput) { in.TicketPrice = domain.MaxTicketPrice }},
		{name: "short description", mutate: func(in *domain.CreateEventInput) { in.Description = "too short" }, wantErr: domain.ErrInvalidInput},
		{name: "blank location", mutate: func(in *domain.CreateEventInput) { in.Location = "   " }, wantErr: domain.ErrInvalidInput},
		{name: "unknown category", mutate: func(in *domain.CreateEventInput) { in.CategoryID = 999 }, wantErr: domain.ErrCategoryNotFound},
		{
			name:        "unknown organizer",
			mutate:      func(in *domain.CreateEventInput) {},
			organizerID: func(*fixture) int64 { return 999 },
			wantErr:     domain.ErrOrganizerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			organizer := f.seedUser("olive", domain.RoleOrganizer)
			cat := f.seedCategory("Tech")
			in := validEventInput(cat.ID, 2)
			in.Title = "  Conf  "
			tt.mutate(&in)
			organizerID := organizer.ID
			if tt.organizerID != nil {
				organizerID = tt.organizerID(f)
			}

			ev, err := f.eventSvc.Create(ctx, in, organizerID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				n, _ := f.events.Count(ctx)
				assert.Zero(t, n, "nothing is stored on failure")
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, ev.ID)
			assert.Equal(t, "Conf", ev.Title)
			assert.Equal(t, domain.EventDraft, ev.Status)
			assert.Equal(t, "Tech", ev.CategoryName)
			assert.Equal(t, "Olive Tester", ev.OrganizerName)
			assert.Equal(t, testNow, ev.CreatedAt)

			got, err := f.eventSvc.GetByID(ctx, ev.ID)
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		})
	}
}

func TestEventService_PublishAndCancel(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		from       domain.EventStatus
		op         func(s *eventService, id, organizerID int64) (*domain.Event, error)
		wantStatus domain.EventStatus
		wantErr    error
	}{
		{"publish draft", domain.EventDraft, (*eventService).publishFor, domain.EventPublished, nil},
		{"publish published", domain.EventPublished, (*eventService).publishFor, domain.EventPublished, nil},
		{"publish cancelled", domain.EventCancelled, (*eventService).publishFor, domain.EventCancelled, domain.ErrConflict},
		{"publish completed", domain.EventCompleted, (*eventService).publishFor, domain.EventCompleted, domain.ErrConflict},
		{"cancel draft", domain.EventDraft, (*eventService).cancelFor, domain.EventCancelled, nil},
		{"cancel published", domain.EventPublished, (*eventService).cancelFor, domain.EventCancelled, nil},
		{"cancel cancelled", domain.EventCancelled, (*eventService).cancelFor, domain.EventCancelled, nil},
		{"cancel completed", domain.EventCompleted, (*eventService).cancelFor, domain.EventCompleted, domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			organizer := f.seedUser("olive", domain.RoleOrganizer)
			cat := f.seedCategory("Tech")
			ev, err := f.eventSvc.Create(ctx, validEventInput(cat.ID, 5), organizer.ID)
			require.NoError(t, err)
			f.forceStatus(t, ev.ID, tt.from)

			got, err := tt.op(f.eventSvc, ev.ID, organizer.ID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, got.Status)
			}
			stored, err := f.events.GetByID(ctx, ev.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status)
		})
	}
}

func (s *eventService) publishFor(id, organizerID int64) (*domain.Event, error) {
	return s.Publish(context.Background(), id, organizerID)
}

func (s *eventService) cancelFor(id, organizerID int64) (*domain.Event, error) {
	return s.Cancel(context.Background(), id, organizerID)
}

func (f *fixture) forceStatus(t *testing.T, id int64, status domain.EventStatus) {
	t.Helper()
	ev, err := f.events.GetByID(context.Background(), id)
	require.NoError(t, err)
	ev.Status = status
	require.NoError(t, f.events.Update(context.Background(), ev))
}

func TestEventService_OrganizerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	organizer := f.seedUser("olive", domain.RoleOrganizer)
	other := f.seedUser("mallory", domain.RoleOrganizer)
	cat := f.seedCategory("Tech")
	ev, err := f.eventSvc.Create(ctx, validEventInput(cat.ID, 5), organizer.ID)
	require.NoError(t, err)

	title := "Hijacked"
	_, err = f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{Title: &title}, other.ID)
	require.ErrorIs(t, err, domain.ErrNotOrganizer)
	_, err = f.eventSvc.Publish(ctx, ev.ID, other.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.eventSvc.Cancel(ctx, ev.ID, other.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	require.ErrorIs(t, f.eventSvc.Delete(ctx, ev.ID, other.ID), domain.ErrForbidden)

	// Forbidden wins over an illegal transition.
	f.forceStatus(t, ev.ID, domain.EventCompleted)
	_, err = f.eventSvc.Publish(ctx, ev.ID, other.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.eventSvc.Publish(ctx, 999, organizer.ID)
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *domain.Event, int64) {
		f := newFixture()
		organizer := f.seedUser("olive", domain.RoleOrganizer)
		cat := f.seedCategory("Tech")
		ev := f.seedPublishedEvent(organizer.ID, cat.ID, 3)
		return f, ev, organizer.ID
	}

	t.Run("partial update keeps other fields and status", func(t *testing.T) {
		f, ev, org := setup(t)
		title := "  Conf 2026 "
		price := 30.0
		got, err := f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{Title: &title, TicketPrice: &price}, org)
		require.NoError(t, err)
		assert.Equal(t, "Conf 2026", got.Title)
		assert.Equal(t, 30.0, got.TicketPrice)
		assert.Equal(t, ev.Description, got.Description)
		assert.Equal(t, domain.EventPublished, got.Status)
	})

	t.Run("moving start into the past", func(t *testing.T) {
		f, ev, org := setup(t)
		start := testNow.Add(-time.Hour)
		_, err := f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{StartDate: &start}, org)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("price beyond storable range", func(t *testing.T) {
		f, ev, org := setup(t)
		price := 123456789.0
		_, err := f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{TicketPrice: &price}, org)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("end before existing start", func(t *testing.T) {
		f, ev, org := setup(t)
		end := ev.StartDate.Add(-time.Minute)
		_, err := f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{EndDate: &end}, org)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("category change must resolve", func(t *testing.T) {
		f, ev, org := setup(t)
		missing := int64(999)
		_, err := f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{CategoryID: &missing}, org)
		require.ErrorIs(t, err, domain.ErrCategoryNotFound)

		music := f.seedCategory("Music")
		got, err := f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{CategoryID: &music.ID}, org)
		require.NoError(t, err)
		assert.Equal(t, "Music", got.CategoryName)
	})

	t.Run("capacity below confirmed count", func(t *testing.T) {
		f, ev, org := setup(t)
		for _, name := range []string{"ulla", "ugo"} {
			u := f.seedUser(name, domain.RoleUser)
			reg, err := f.registrationSvc.Register(ctx, ev.ID, u.ID, nil)
			require.NoError(t, err)
			_, err = f.registrationSvc.Confirm(ctx, reg.ID)
			require.NoError(t, err)
		}
		one := 1
		_, err := f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{MaxCapacity: &one}, org)
		require.ErrorIs(t, err, domain.ErrConflict)

		two := 2
		got, err := f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{MaxCapacity: &two}, org)
		require.NoError(t, err)
		assert.Equal(t, 2, got.MaxCapacity)
	})

	t.Run("cancelled events cannot be updated", func(t *testing.T) {
		f, ev, org := setup(t)
		_, err := f.eventSvc.Cancel(ctx, ev.ID, org)
		require.NoError(t, err)
		title := "Revived"
		_, err = f.eventSvc.Update(ctx, ev.ID, domain.UpdateEventInput{Title: &title}, org)
		require.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestEventService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	organizer := f.seedUser("olive", domain.RoleOrganizer)
	attendee := f.seedUser("ulla", domain.RoleUser)
	cat := f.seedCategory("Tech")
	ev := f.seedPublishedEvent(organizer.ID, cat.ID, 3)
	reg, err := f.registrationSvc.Register(ctx, ev.ID, attendee.ID, nil)
	require.NoError(t, err)

	require.NoError(t, f.eventSvc.Delete(ctx, ev.ID, organizer.ID))

	_, err = f.eventSvc.GetByID(ctx, ev.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.registrationSvc.GetByID(ctx, reg.ID)
	require.ErrorIs(t, err, domain.ErrRegistrationNotFound)
	require.ErrorIs(t, f.eventSvc.Delete(ctx, ev.ID, organizer.ID), domain.ErrEventNotFound)
}

func TestEventService_Reads(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	organizer := f.seedUser("olive", domain.RoleOrganizer)
	attendee := f.seedUser("ulla", domain.RoleUser)
	tech := f.seedCategory("Tech")
	music := f.seedCategory("Music")

	published := f.seedPublishedEvent(organizer.ID, tech.ID, 1)
	in := validEventInput(music.ID, 5)
	in.Title = "Jazz Night"
	in.Description = "Smooth jazz until late"
	in.StartDate = in.StartDate.Add(48 * time.Hour)
	in.EndDate = in.EndDate.Add(48 * time.Hour)
	draft, err := f.eventSvc.Create(ctx, in, organizer.ID)
	require.NoError(t, err)

	reg, err := f.registrationSvc.Register(ctx, published.ID, attendee.ID, nil)
	require.NoError(t, err)
	_, err = f.registrationSvc.Confirm(ctx, reg.ID)
	require.NoError(t, err)

	t.Run("getAll lists published only", func(t *testing.T) {
		page, err := f.eventSvc.GetAll(ctx, domain.PageRequest{Size: 10})
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, published.ID, page.Content[0].ID)
		assert.Equal(t, 1, page.TotalElements)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("regardless of status", func(t *testing.T) {
		page, err := f.eventSvc.GetAllRegardlessOfStatus(ctx, domain.PageRequest{Page: 1, Size: 1})
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, draft.ID, page.Content[0].ID)
		assert.Equal(t, 2, page.TotalElements)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("search", func(t *testing.T) {
		page, err := f.eventSvc.Search(ctx, " CONF", domain.PageRequest{})
		require.NoError(t, err)
		assert.Len(t, page.Content, 1)

		page, err = f.eventSvc.Search(ctx, "jazz", domain.PageRequest{})
		require.NoError(t, err)
		assert.Empty(t, page.Content, "drafts are not searchable")

		_, err = f.eventSvc.Search(ctx, "   ", domain.PageRequest{})
		require.ErrorIs(t, err, domain.ErrEmptySearchTerm)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("upcoming and available", func(t *testing.T) {
		upcoming, err := f.eventSvc.GetUpcoming(ctx)
		require.NoError(t, err)
		require.Len(t, upcoming, 1)
		assert.Equal(t, published.ID, upcoming[0].ID)

		available, err := f.eventSvc.GetWithAvailableCapacity(ctx)
		require.NoError(t, err)
		assert.Empty(t, available, "the only published event is full")
	})

	t.Run("by category and organizer", func(t *testing.T) {
		page, err := f.eventSvc.GetByCategory(ctx, music.ID, domain.PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, domain.EventDraft, page.Content[0].Status)

		_, err = f.eventSvc.GetByCategory(ctx, 999, domain.PageRequest{})
		require.ErrorIs(t, err, domain.ErrCategoryNotFound)

		page, err = f.eventSvc.GetByOrganizer(ctx, organizer.ID, domain.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, 2, page.TotalElements)

		_, err = f.eventSvc.GetByOrganizer(ctx, 999, domain.PageRequest{})
		require.ErrorIs(t, err, domain.ErrOrganizerNotFound)
	})

	t.Run("read view carries the confirmed count", func(t *testing.T) {
		ev, err := f.eventSvc.GetByID(ctx, published.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, ev.ConfirmedCount)

		n, err := f.eventSvc.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestEventService_PortFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	organizer := f.seedUser("olive", domain.RoleOrganizer)
	cat := f.seedCategory("Tech")
	ev, err := f.eventSvc.Create(ctx, validEventInput(cat.ID, 5), organizer.ID)
	require.NoError(t, err)

	f.store.failures["events.Update"] = errors.New("disk full")
	_, err = f.eventSvc.Publish(ctx, ev.ID, organizer.ID)
	require.ErrorContains(t, err, "update event")

	stored, err := f.events.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventDraft, stored.Status)
}
