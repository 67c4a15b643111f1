package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func newRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeData decodes the envelope and unmarshals its data into dest when dest is non-nil.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		b, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, dest))
	}
	return envelope
}

// fakeCategoryService implements domain.CategoryService for handler tests.
type fakeCategoryService struct {
	category   *domain.Category
	categories []*domain.Category
	count      int
	err        error
	lastCall   string
	lastID     int64
	lastInput  domain.CategoryInput
	lastName   string
}

func (f *fakeCategoryService) Create(_ context.Context, in domain.CategoryInput) (*domain.Category, error) {
	f.lastCall, f.lastInput = "Create", in
	return f.category, f.err
}

func (f *fakeCategoryService) Update(_ context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	f.lastCall, f.lastID, f.lastInput = "Update", id, in
	return f.category, f.err
}

func (f *fakeCategoryService) Delete(_ context.Context, id int64) error {
	f.lastCall, f.lastID = "Delete", id
	return f.err
}

func (f *fakeCategoryService) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	f.lastCall, f.lastID = "GetByID", id
	return f.category, f.err
}

func (f *fakeCategoryService) List(_ context.Context) ([]*domain.Category, error) {
	f.lastCall = "List"
	return f.categories, f.err
}

func (f *fakeCategoryService) ListByNameContaining(_ context.Context, name string) ([]*domain.Category, error) {
	f.lastCall, f.lastName = "ListByNameContaining", name
	return f.categories, f.err
}

func (f *fakeCategoryService) Count(_ context.Context) (int, error) {
	f.lastCall = "Count"
	return f.count, f.err
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	user         *domain.User
	users        []*domain.User
	count        int
	err          error
	lastCall     string
	lastID       int64
	lastKey      string
	lastRole     domain.Role
	lastRegister domain.RegisterUserInput
	lastUpdate   domain.UpdateUserInput
}

func (f *fakeUserService) Register(_ context.Context, in domain.RegisterUserInput) (*domain.User, error) {
	f.lastCall, f.lastRegister = "Register", in
	return f.user, f.err
}

func (f *fakeUserService) Update(_ context.Context, id int64, in domain.UpdateUserInput) (*domain.User, error) {
	f.lastCall, f.lastID, f.lastUpdate = "Update", id, in
	return f.user, f.err
}

func (f *fakeUserService) Delete(_ context.Context, id int64) error {
	f.lastCall, f.lastID = "Delete", id
	return f.err
}

func (f *fakeUserService) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.lastCall, f.lastID = "GetByID", id
	return f.user, f.err
}

func (f *fakeUserService) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.lastCall, f.lastKey = "GetByUsername", username
	return f.user, f.err
}

func (f *fakeUserService) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.lastCall, f.lastKey = "GetByEmail", email
	return f.user, f.err
}

func (f *fakeUserService) List(_ context.Context) ([]*domain.User, error) {
	f.lastCall = "List"
	return f.users, f.err
}

func (f *fakeUserService) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	f.lastCall, f.lastRole = "ListByRole", role
	return f.users, f.err
}

func (f *fakeUserService) Count(_ context.Context) (int, error) {
	f.lastCall = "Count"
	return f.count, f.err
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	token          string
	user           *domain.User
	err            error
	lastIdentifier string
	lastPassword   string
}

func (f *fakeAuthService) Login(_ context.Context, identifier, password string) (string, *domain.User, error) {
	f.lastIdentifier, f.lastPassword = identifier, password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	event           *domain.Event
	page            *domain.Page[*domain.Event]
	events          []*domain.Event
	count           int
	err             error
	lastCall        string
	lastID          int64
	lastOrganizerID int64
	lastCreate      domain.CreateEventInput
	lastUpdate      domain.UpdateEventInput
	lastPage        domain.PageRequest
	lastTerm        string
}

func (f *fakeEventService) Create(_ context.Context, in domain.CreateEventInput, organizerID int64) (*domain.Event, error) {
	f.lastCall, f.lastCreate, f.lastOrganizerID = "Create", in, organizerID
	return f.event, f.err
}

func (f *fakeEventService) Update(_ context.Context, id int64, in domain.UpdateEventInput, organizerID int64) (*domain.Event, error) {
	f.lastCall, f.lastID, f.lastUpdate, f.lastOrganizerID = "Update", id, in, organizerID
	return f.event, f.err
}

func (f *fakeEventService) Publish(_ context.Context, id, organizerID int64) (*domain.Event, error) {
	f.lastCall, f.lastID, f.lastOrganizerID = "Publish", id, organizerID
	return f.event, f.err
}

func (f *fakeEventService) Cancel(_ context.Context, id, organizerID int64) (*domain.Event, error) {
	f.lastCall, f.lastID, f.lastOrganizerID = "Cancel", id, organizerID
	return f.event, f.err
}

func (f *fakeEventService) Delete(_ context.Context, id, organizerID int64) error {
	f.lastCall, f.lastID, f.lastOrganizerID = "Delete", id, organizerID
	return f.err
}

func (f *fakeEventService) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	f.lastCall, f.lastID = "GetByID", id
	return f.event, f.err
}

func (f *fakeEventService) paged(call string, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	f.lastCall, f.lastPage = call, page
	return f.page, f.err
}

func (f *fakeEventService) GetAll(_ context.Context, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	return f.paged("GetAll", page)
}

func (f *fakeEventService) GetAllRegardlessOfStatus(_ context.Context, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	return f.paged("GetAllRegardlessOfStatus", page)
}

func (f *fakeEventService) Search(_ context.Context, term string, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	f.lastTerm = term
	return f.paged("Search", page)
}

func (f *fakeEventService) GetUpcoming(_ context.Context) ([]*domain.Event, error) {
	f.lastCall = "GetUpcoming"
	return f.events, f.err
}

func (f *fakeEventService) GetByCategory(_ context.Context, categoryID int64, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	f.lastID = categoryID
	return f.paged("GetByCategory", page)
}

func (f *fakeEventService) GetByOrganizer(_ context.Context, organizerID int64, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	f.lastID = organizerID
	return f.paged("GetByOrganizer", page)
}

func (f *fakeEventService) GetWithAvailableCapacity(_ context.Context) ([]*domain.Event, error) {
	f.lastCall = "GetWithAvailableCapacity"
	return f.events, f.err
}

func (f *fakeEventService) Count(_ context.Context) (int, error) {
	f.lastCall = "Count"
	return f.count, f.err
}

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	registration *domain.EventRegistration
	list         []*domain.EventRegistration
	count        int
	err          error
	lastCall     string
	lastID       int64
	lastEventID  int64
	lastUserID   int64
	lastSpecial  *string
}

func (f *fakeRegistrationService) Register(_ context.Context, eventID, userID int64, specialRequirements *string) (*domain.EventRegistration, error) {
	f.lastCall, f.lastEventID, f.lastUserID, f.lastSpecial = "Register", eventID, userID, specialRequirements
	return f.registration, f.err
}

func (f *fakeRegistrationService) one(call string, id int64) (*domain.EventRegistration, error) {
	f.lastCall, f.lastID = call, id
	return f.registration, f.err
}

func (f *fakeRegistrationService) Confirm(_ context.Context, id int64) (*domain.EventRegistration, error) {
	return f.one("Confirm", id)
}

func (f *fakeRegistrationService) Cancel(_ context.Context, id int64) (*domain.EventRegistration, error) {
	return f.one("Cancel", id)
}

func (f *fakeRegistrationService) GetByID(_ context.Context, id int64) (*domain.EventRegistration, error) {
	return f.one("GetByID", id)
}

func (f *fakeRegistrationService) Delete(_ context.Context, id int64) error {
	f.lastCall, f.lastID = "Delete", id
	return f.err
}

func (f *fakeRegistrationService) many(call string, id int64) ([]*domain.EventRegistration, error) {
	f.lastCall, f.lastID = call, id
	return f.list, f.err
}

func (f *fakeRegistrationService) GetByEvent(_ context.Context, eventID int64) ([]*domain.EventRegistration, error) {
	return f.many("GetByEvent", eventID)
}

func (f *fakeRegistrationService) GetByUser(_ context.Context, userID int64) ([]*domain.EventRegistration, error) {
	return f.many("GetByUser", userID)
}

func (f *fakeRegistrationService) GetConfirmedByEvent(_ context.Context, eventID int64) ([]*domain.EventRegistration, error) {
	return f.many("GetConfirmedByEvent", eventID)
}

func (f *fakeRegistrationService) GetConfirmedByUser(_ context.Context, userID int64) ([]*domain.EventRegistration, error) {
	return f.many("GetConfirmedByUser", userID)
}

func (f *fakeRegistrationService) CountConfirmedByEvent(_ context.Context, eventID int64) (int, error) {
	f.lastCall, f.lastID = "CountConfirmedByEvent", eventID
	return f.count, f.err
}

func (f *fakeRegistrationService) Count(_ context.Context) (int, error) {
	f.lastCall = "Count"
	return f.count, f.err
}

var (
	_ domain.CategoryService     = (*fakeCategoryService)(nil)
	_ domain.UserService         = (*fakeUserService)(nil)
	_ domain.AuthService         = (*fakeAuthService)(nil)
	_ domain.EventService        = (*fakeEventService)(nil)
	_ domain.RegistrationService = (*fakeRegistrationService)(nil)
)
