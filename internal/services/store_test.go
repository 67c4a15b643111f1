package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventmanagement/internal/domain"
)

// memStore is an in-memory implementation of every repository port. Values are
// stored by value so callers never share pointers with the store.
type memStore struct {
	mu         sync.Mutex
	users      map[int64]domain.User
	categories map[int64]domain.Category
	events     map[int64]domain.Event
	regs       map[int64]domain.EventRegistration
	nextID     int64

	// failures makes the named operation return the given error.
	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[int64]domain.User),
		categories: make(map[int64]domain.Category),
		events:     make(map[int64]domain.Event),
		regs:       make(map[int64]domain.EventRegistration),
		failures:   make(map[string]error),
	}
}

func (s *memStore) failure(op string) error {
	return s.failures[op]
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	users      map[int64]domain.User
	categories map[int64]domain.Category
	events     map[int64]domain.Event
	regs       map[int64]domain.EventRegistration
	nextID     int64
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		users:      copyMap(s.users),
		categories: copyMap(s.categories),
		events:     copyMap(s.events),
		regs:       copyMap(s.regs),
		nextID:     s.nextID,
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.categories, s.events, s.regs, s.nextID = snap.users, snap.categories, snap.events, snap.regs, snap.nextID
}

// serialTx runs transactions one at a time and restores the store when fn fails.
type serialTx struct {
	mu    sync.Mutex
	store *memStore
	calls int
}

func (t *serialTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

func paginate[T any](items []T, page domain.PageRequest) ([]T, int) {
	page = page.Normalize()
	total := len(items)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return items[start:end], total
}

// ---- users ----

type memUsers struct{ *memStore }

func (s memUsers) view(u domain.User) *domain.User {
	for _, e := range s.events {
		if e.OrganizerID == u.ID {
			u.OrganizedEventCount++
		}
	}
	return &u
}

func (s memUsers) Create(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("users.Create"); err != nil {
		return err
	}
	for _, other := range s.users {
		if other.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = s.id()
	s.users[u.ID] = *u
	return nil
}

func (s memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.view(u), nil
}

func (s memUsers) find(match func(domain.User) bool) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return s.view(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.find(func(u domain.User) bool { return u.Username == username })
}

func (s memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s memUsers) filter(match func(domain.User) bool) []*domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.User{}
	for _, u := range s.users {
		if match(u) {
			out = append(out, s.view(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memUsers) List(ctx context.Context) ([]*domain.User, error) {
	return s.filter(func(domain.User) bool { return true }), nil
}

func (s memUsers) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return s.filter(func(u domain.User) bool { return u.Role == role }), nil
}

func (s memUsers) Update(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	next := *u
	next.PasswordHash, next.Salt = stored.PasswordHash, stored.Salt
	s.users[u.ID] = next
	return nil
}

func (s memUsers) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	for _, e := range s.events {
		if e.OrganizerID == id {
			return domain.ErrUserReferenced
		}
	}
	for _, r := range s.regs {
		if r.UserID == id {
			return domain.ErrUserReferenced
		}
	}
	delete(s.users, id)
	return nil
}

func (s memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	return err == nil, nil
}

func (s memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

func (s memUsers) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

// ---- categories ----

type memCategories struct{ *memStore }

func (s memCategories) view(c domain.Category) *domain.Category {
	for _, e := range s.events {
		if e.CategoryID == c.ID {
			c.EventCount++
		}
	}
	return &c
}

func (s memCategories) Create(ctx context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.categories {
		if other.Name == c.Name {
			return domain.ErrDuplicateCategoryName
		}
	}
	c.ID = s.id()
	s.categories[c.ID] = *c
	return nil
}

func (s memCategories) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return s.view(c), nil
}

func (s memCategories) filter(match func(domain.Category) bool) []*domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Category{}
	for _, c := range s.categories {
		if match(c) {
			out = append(out, s.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s memCategories) List(ctx context.Context) ([]*domain.Category, error) {
	if err := s.failure("categories.List"); err != nil {
		return nil, err
	}
	return s.filter(func(domain.Category) bool { return true }), nil
}

func (s memCategories) ListByNameContaining(ctx context.Context, name string) ([]*domain.Category, error) {
	name = strings.ToLower(name)
	return s.filter(func(c domain.Category) bool { return strings.Contains(strings.ToLower(c.Name), name) }), nil
}

func (s memCategories) Update(ctx context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	for _, other := range s.categories {
		if other.ID != c.ID && other.Name == c.Name {
			return domain.ErrDuplicateCategoryName
		}
	}
	s.categories[c.ID] = *c
	return nil
}

func (s memCategories) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	for _, e := range s.events {
		if e.CategoryID == id {
			return domain.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	return nil
}

func (s memCategories) ExistsByName(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s memCategories) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories), nil
}

// ---- events ----

type memEvents struct{ *memStore }

func (s memEvents) confirmed(eventID int64) int {
	n := 0
	for _, r := range s.regs {
		if r.EventID == eventID && r.Status == domain.RegistrationConfirmed {
			n++
		}
	}
	return n
}

func (s memEvents) view(e domain.Event) *domain.Event {
	e.CategoryName = s.categories[e.CategoryID].Name
	organizer := s.users[e.OrganizerID]
	e.OrganizerName = organizer.FullName()
	e.ConfirmedCount = s.confirmed(e.ID)
	return &e
}

func (s memEvents) Create(ctx context.Context, e *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("events.Create"); err != nil {
		return err
	}
	if _, ok := s.categories[e.CategoryID]; !ok {
		return domain.ErrReferenced
	}
	if _, ok := s.users[e.OrganizerID]; !ok {
		return domain.ErrReferenced
	}
	e.ID = s.id()
	s.events[e.ID] = *e
	return nil
}

func (s memEvents) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return s.view(e), nil
}

// GetByIDForUpdate relies on serialTx for exclusion.
func (s memEvents) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	return s.GetByID(ctx, id)
}

func (s memEvents) Update(ctx context.Context, e *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("events.Update"); err != nil {
		return err
	}
	if _, ok := s.events[e.ID]; !ok {
		return domain.ErrEventNotFound
	}
	stored := *e
	stored.CategoryName, stored.OrganizerName, stored.ConfirmedCount = "", "", 0
	s.events[e.ID] = stored
	return nil
}

func (s memEvents) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(s.events, id)
	for rid, r := range s.regs {
		if r.EventID == id {
			delete(s.regs, rid)
		}
	}
	return nil
}

func (s memEvents) filter(match func(domain.Event) bool) []*domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Event{}
	for _, e := range s.events {
		if match(e) {
			out = append(out, s.view(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s memEvents) ListByStatus(ctx context.Context, status domain.EventStatus, page domain.PageRequest) ([]*domain.Event, int, error) {
	list, total := paginate(s.filter(func(e domain.Event) bool { return e.Status == status }), page)
	return list, total, nil
}

func (s memEvents) ListAll(ctx context.Context, page domain.PageRequest) ([]*domain.Event, int, error) {
	list, total := paginate(s.filter(func(domain.Event) bool { return true }), page)
	return list, total, nil
}

func (s memEvents) ListByCategoryID(ctx context.Context, categoryID int64, page domain.PageRequest) ([]*domain.Event, int, error) {
	list, total := paginate(s.filter(func(e domain.Event) bool { return e.CategoryID == categoryID }), page)
	return list, total, nil
}

func (s memEvents) ListByOrganizerID(ctx context.Context, organizerID int64, page domain.PageRequest) ([]*domain.Event, int, error) {
	list, total := paginate(s.filter(func(e domain.Event) bool { return e.OrganizerID == organizerID }), page)
	return list, total, nil
}

func (s memEvents) Search(ctx context.Context, term string, page domain.PageRequest) ([]*domain.Event, int, error) {
	term = strings.ToLower(term)
	list, total := paginate(s.filter(func(e domain.Event) bool {
		return e.Status == domain.EventPublished &&
			(strings.Contains(strings.ToLower(e.Title), term) || strings.Contains(strings.ToLower(e.Description), term))
	}), page)
	return list, total, nil
}

func (s memEvents) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	return s.filter(func(e domain.Event) bool {
		return e.Status == domain.EventPublished && e.StartDate.After(now)
	}), nil
}

func (s memEvents) ListWithAvailableCapacity(ctx context.Context) ([]*domain.Event, error) {
	return s.filter(func(e domain.Event) bool {
		return e.Status == domain.EventPublished && s.confirmed(e.ID) < e.MaxCapacity
	}), nil
}

func (s memEvents) ExistsByCategoryID(ctx context.Context, categoryID int64) (bool, error) {
	return len(s.filter(func(e domain.Event) bool { return e.CategoryID == categoryID })) > 0, nil
}

func (s memEvents) IsFull(ctx context.Context, id int64) (bool, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return e.ConfirmedCount >= e.MaxCapacity, nil
}

func (s memEvents) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), nil
}

// ---- registrations ----

type memRegistrations struct{ *memStore }

func (s memRegistrations) view(r domain.EventRegistration) *domain.EventRegistration {
	r.EventTitle = s.events[r.EventID].Title
	r.Username = s.users[r.UserID].Username
	return &r
}

func (s memRegistrations) Create(ctx context.Context, r *domain.EventRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.regs {
		if other.EventID == r.EventID && other.UserID == r.UserID && other.Status.Active() {
			return domain.ErrAlreadyRegistered
		}
	}
	r.ID = s.id()
	s.regs[r.ID] = *r
	return nil
}

func (s memRegistrations) GetByID(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regs[id]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	return s.view(r), nil
}

func (s memRegistrations) GetByIDForUpdate(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	return s.GetByID(ctx, id)
}

func (s memRegistrations) Update(ctx context.Context, r *domain.EventRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[r.ID]; !ok {
		return domain.ErrRegistrationNotFound
	}
	s.regs[r.ID] = *r
	return nil
}

func (s memRegistrations) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[id]; !ok {
		return domain.ErrRegistrationNotFound
	}
	delete(s.regs, id)
	return nil
}

func (s memRegistrations) filter(match func(domain.EventRegistration) bool) []*domain.EventRegistration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.EventRegistration{}
	for _, r := range s.regs {
		if match(r) {
			out = append(out, s.view(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s memRegistrations) ListByEventID(ctx context.Context, eventID int64) ([]*domain.EventRegistration, error) {
	return s.filter(func(r domain.EventRegistration) bool { return r.EventID == eventID }), nil
}

func (s memRegistrations) ListByUserID(ctx context.Context, userID int64) ([]*domain.EventRegistration, error) {
	return s.filter(func(r domain.EventRegistration) bool { return r.UserID == userID }), nil
}

func (s memRegistrations) ListConfirmedByEventID(ctx context.Context, eventID int64) ([]*domain.EventRegistration, error) {
	return s.filter(func(r domain.EventRegistration) bool {
		return r.EventID == eventID && r.Status == domain.RegistrationConfirmed
	}), nil
}

func (s memRegistrations) ListConfirmedByUserID(ctx context.Context, userID int64) ([]*domain.EventRegistration, error) {
	return s.filter(func(r domain.EventRegistration) bool {
		return r.UserID == userID && r.Status == domain.RegistrationConfirmed
	}), nil
}

func (s memRegistrations) ExistsActive(ctx context.Context, eventID, userID int64) (bool, error) {
	return len(s.filter(func(r domain.EventRegistration) bool {
		return r.EventID == eventID && r.UserID == userID && r.Status.Active()
	})) > 0, nil
}

func (s memRegistrations) CountConfirmedByEventID(ctx context.Context, eventID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("registrations.CountConfirmedByEventID"); err != nil {
		return 0, err
	}
	return memEvents(s).confirmed(eventID), nil
}

func (s memRegistrations) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.regs), nil
}

// ---- doubles for auth ports ----

type fakePasswordHasher struct {
	saltErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}

func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID int64, username string, role domain.Role) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + username + "-" + string(role), nil
}

// ---- fixture ----

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store         *memStore
	tx            *serialTx
	users         memUsers
	categories    memCategories
	events        memEvents
	registrations memRegistrations

	categorySvc     *categoryService
	userSvc         *userService
	eventSvc        *eventService
	registrationSvc *registrationService
	authSvc         *authService
}

func newFixture() *fixture {
	store := newMemStore()
	tx := &serialTx{store: store}
	f := &fixture{
		store:         store,
		tx:            tx,
		users:         memUsers{store},
		categories:    memCategories{store},
		events:        memEvents{store},
		registrations: memRegistrations{store},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return testNow }

	f.categorySvc = NewCategoryService(tx, f.categories, f.events).(*categoryService)
	f.categorySvc.now = clock
	f.userSvc = NewUserService(tx, f.users, &fakePasswordHasher{}).(*userService)
	f.userSvc.now = clock
	f.eventSvc = NewEventService(tx, f.events, f.categories, f.users, logger).(*eventService)
	f.eventSvc.now = clock
	f.registrationSvc = NewRegistrationService(tx, f.events, f.users, f.registrations, logger).(*registrationService)
	f.registrationSvc.now = clock
	f.authSvc = NewAuthService(tx, f.users, &fakePasswordHasher{}, &fakeTokenIssuer{}).(*authService)
	return f
}

func (f *fixture) seedUser(username string, role domain.Role) *domain.User {
	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash:salt:secret",
		Salt:         "salt",
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
		Role:         role,
		Active:       true,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) seedCategory(name string) *domain.Category {
	c := &domain.Category{Name: name, CreatedAt: testNow, UpdatedAt: testNow}
	if err := f.categories.Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func validEventInput(categoryID int64, capacity int) domain.CreateEventInput {
	day := testNow.Add(24 * time.Hour)
	start := time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, time.UTC)
	return domain.CreateEventInput{
		Title:       "Conf",
		Description: "A conference about things",
		StartDate:   start,
		EndDate:     start.Add(2 * time.Hour),
		Location:    "Main Hall",
		MaxCapacity: capacity,
		TicketPrice: 25.0,
		CategoryID:  categoryID,
	}
}

// seedPublishedEvent creates and publishes an event through the service.
func (f *fixture) seedPublishedEvent(organizerID, categoryID int64, capacity int) *domain.Event {
	ctx := context.Background()
	ev, err := f.eventSvc.Create(ctx, validEventInput(categoryID, capacity), organizerID)
	if err != nil {
		panic(err)
	}
	ev, err = f.eventSvc.Publish(ctx, ev.ID, organizerID)
	if err != nil {
		panic(err)
	}
	return ev
}
