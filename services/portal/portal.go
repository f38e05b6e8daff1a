// Package portal is the application layer the HTTP handlers call. It reads
// through the query cache and invalidates cached queries after mutations.
package portal

import (
	"context"
	"sort"
	"time"

	"campusconnect/db"
	"campusconnect/services/querycache"

	"golang.org/x/sync/errgroup"
)

// Store is the persistence surface the portal depends on.
type Store interface {
	Users(ctx context.Context) ([]db.User, error)
	Activities(ctx context.Context) ([]db.Activity, error)
	Registrations(ctx context.Context) ([]db.Registration, error)
	CurrentUser(ctx context.Context) (*db.User, error)

	Login(ctx context.Context, username, password string) (db.User, error)
	LoginByID(ctx context.Context, id int) (db.User, error)
	Logout(ctx context.Context) error
	CreateUser(ctx context.Context, in db.NewUser) (db.User, error)

	CreateActivity(ctx context.Context, in db.NewActivity) (db.Activity, error)
	UpdateActivity(ctx context.Context, id int, patch db.ActivityPatch) (db.Activity, error)
	DeleteActivity(ctx context.Context, id int) error

	CreateRegistration(ctx context.Context, in db.NewRegistration) (db.Registration, error)
	UpdateRegistrationStatus(ctx context.Context, id int, status db.Status) (db.Registration, error)
	DeleteRegistration(ctx context.Context, id int) error
}

type Service struct {
	store Store
	cache *querycache.Cache
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used to decide which activities are upcoming.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, cache *querycache.Cache, opts ...Option) *Service {
	s := &Service{
		store: store,
		cache: cache,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Queries

func (s *Service) Users(ctx context.Context) ([]db.User, error) {
	return querycache.Get(ctx, s.cache, querycache.KeyUsers, s.store.Users)
}

func (s *Service) CurrentUser(ctx context.Context) (*db.User, error) {
	return querycache.Get(ctx, s.cache, querycache.KeyCurrentUser, s.store.CurrentUser)
}

func (s *Service) Activities(ctx context.Context) ([]db.Activity, error) {
	return querycache.Get(ctx, s.cache, querycache.KeyActivities, s.store.Activities)
}

func (s *Service) Registrations(ctx context.Context) ([]db.Registration, error) {
	return querycache.Get(ctx, s.cache, querycache.KeyRegistrations, s.store.Registrations)
}

func (s *Service) RegistrationsForUser(ctx context.Context, userID int) ([]db.Registration, error) {
	regs, err := s.Registrations(ctx)
	if err != nil {
		return nil, err
	}
	return filterRegistrations(regs, func(r db.Registration) bool { return r.UserID == userID }), nil
}

func (s *Service) RegistrationsForActivity(ctx context.Context, activityID int) ([]db.Registration, error) {
	regs, err := s.Registrations(ctx)
	if err != nil {
		return nil, err
	}
	return filterRegistrations(regs, func(r db.Registration) bool { return r.ActivityID == activityID }), nil
}

// IsRegistered reports whether the user holds a registration for the
// activity that has not been cancelled.
func (s *Service) IsRegistered(ctx context.Context, userID, activityID int) (bool, error) {
	regs, err := s.RegistrationsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range regs {
		if r.ActivityID == activityID && r.Status != db.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

// UpcomingActivities returns activities dated now or later, soonest first.
func (s *Service) UpcomingActivities(ctx context.Context) ([]db.Activity, error) {
	activities, err := s.Activities(ctx)
	if err != nil {
		return nil, err
	}
	return upcoming(activities, s.now()), nil
}

// Attendee is a registration together with the user it belongs to. User is
// nil when the registration points at a user that no longer exists.
type Attendee struct {
	db.Registration
	User *db.User `json:"user"`
}

// Attendees lists the registrations for an activity with their users.
func (s *Service) Attendees(ctx context.Context, activityID int) ([]Attendee, error) {
	var (
		regs  []db.Registration
		users []db.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regs, err = s.RegistrationsForActivity(gctx, activityID)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.Users(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int]db.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	attendees := make([]Attendee, 0, len(regs))
	for _, r := range regs {
		a := Attendee{Registration: r}
		if u, ok := byID[r.UserID]; ok {
			a.User = &u
		}
		attendees = append(attendees, a)
	}
	return attendees, nil
}

// StudentOverview is what a student sees on their dashboard.
type StudentOverview struct {
	Upcoming      []db.Activity     `json:"upcoming"`
	Registrations []db.Registration `json:"registrations"`
	Schedule      []db.Activity     `json:"schedule"`
}

// StudentOverview loads the upcoming activities and the user's
// registrations. Schedule holds the upcoming activities the user is
// registered for and has not cancelled.
func (s *Service) StudentOverview(ctx context.Context, userID int) (StudentOverview, error) {
	var out StudentOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Upcoming, err = s.UpcomingActivities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Registrations, err = s.RegistrationsForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return StudentOverview{}, err
	}

	active := make(map[int]bool, len(out.Registrations))
	for _, r := range out.Registrations {
		if r.Status != db.StatusCancelled {
			active[r.ActivityID] = true
		}
	}
	out.Schedule = make([]db.Activity, 0)
	for _, a := range out.Upcoming {
		if active[a.ID] {
			out.Schedule = append(out.Schedule, a)
		}
	}
	return out, nil
}

// Mutations

func (s *Service) Login(ctx context.Context, username, password string) (db.User, error) {
	u, err := s.store.Login(ctx, username, password)
	if err != nil {
		return db.User{}, err
	}
	s.cache.Set(querycache.KeyCurrentUser, &u)
	return u, nil
}

func (s *Service) LoginByID(ctx context.Context, id int) (db.User, error) {
	u, err := s.store.LoginByID(ctx, id)
	if err != nil {
		return db.User{}, err
	}
	s.cache.Set(querycache.KeyCurrentUser, &u)
	return u, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	s.cache.Set(querycache.KeyCurrentUser, (*db.User)(nil))
	s.cache.Invalidate(querycache.KeyCurrentUser)
	return nil
}

// Signup creates the account and logs it in.
func (s *Service) Signup(ctx context.Context, in db.NewUser) (db.User, error) {
	u, err := s.store.CreateUser(ctx, in)
	if err != nil {
		return db.User{}, err
	}
	s.cache.Invalidate(querycache.KeyUsers)
	s.cache.Set(querycache.KeyCurrentUser, &u)
	return u, nil
}

func (s *Service) CreateActivity(ctx context.Context, in db.NewActivity) (db.Activity, error) {
	a, err := s.store.CreateActivity(ctx, in)
	if err != nil {
		return db.Activity{}, err
	}
	s.cache.Invalidate(querycache.KeyActivities)
	return a, nil
}

func (s *Service) UpdateActivity(ctx context.Context, id int, patch db.ActivityPatch) (db.Activity, error) {
	a, err := s.store.UpdateActivity(ctx, id, patch)
	if err != nil {
		return db.Activity{}, err
	}
	s.cache.Invalidate(querycache.KeyActivities)
	return a, nil
}

func (s *Service) DeleteActivity(ctx context.Context, id int) error {
	if err := s.store.DeleteActivity(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(querycache.KeyActivities, querycache.KeyRegistrations)
	return nil
}

func (s *Service) CreateRegistration(ctx context.Context, in db.NewRegistration) (db.Registration, error) {
	r, err := s.store.CreateRegistration(ctx, in)
	if err != nil {
		return db.Registration{}, err
	}
	s.cache.Invalidate(querycache.KeyRegistrations)
	return r, nil
}

func (s *Service) UpdateRegistrationStatus(ctx context.Context, id int, status db.Status) (db.Registration, error) {
	r, err := s.store.UpdateRegistrationStatus(ctx, id, status)
	if err != nil {
		return db.Registration{}, err
	}
	s.cache.Invalidate(querycache.KeyRegistrations)
	return r, nil
}

func (s *Service) DeleteRegistration(ctx context.Context, id int) error {
	if err := s.store.DeleteRegistration(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(querycache.KeyRegistrations)
	return nil
}

func filterRegistrations(regs []db.Registration, keep func(db.Registration) bool) []db.Registration {
	out := make([]db.Registration, 0)
	for _, r := range regs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// upcoming keeps activities dated at or after now and sorts them by date.
// Activities whose date does not parse are dropped.
func upcoming(activities []db.Activity, now time.Time) []db.Activity {
	type dated struct {
		activity db.Activity
		at       time.Time
	}

	list := make([]dated, 0, len(activities))
	for _, a := range activities {
		at, err := time.Parse(time.RFC3339, a.Date)
		if err != nil || at.Before(now) {
			continue
		}
		list = append(list, dated{a, at})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].at.Before(list[j].at) })

	out := make([]db.Activity, len(list))
	for i, d := range list {
		out[i] = d.activity
	}
	return out
}
