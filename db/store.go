package db

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"campusconnect/apperrors"
	"campusconnect/infrastructure/kv"
	"campusconnect/pkg/logger"
	"campusconnect/pkg/metrics"
)

// DefaultKey is the storage key the portal keeps its snapshot under.
const DefaultKey = "student_portal_db"

// Store owns the portal's state. Every operation loads the whole snapshot
// from the backend, and every mutation writes the whole snapshot back.
//
// Operations on one Store are serialized, so concurrent callers in one
// process never lose each other's writes. Separate processes sharing a
// backend still overwrite each other's snapshots.
type Store struct {
	mu      sync.Mutex
	backend kv.Backend
	key     string
	log     *logger.Logger
	now     func() time.Time
}

type Option func(*Store)

// WithClock sets the clock used to date the seed dataset.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(backend kv.Backend, key string, log *logger.Logger, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logger.GetDefault()
	}

	s := &Store{
		backend: backend,
		key:     key,
		log:     log.WithField("storage_key", key),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads the snapshot. A missing blob is replaced by the seed, which is
// persisted. An unreadable blob is replaced by the seed for this call only.
func (s *Store) load(ctx context.Context) (Snapshot, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		seed := Seed(s.now())
		if err := s.save(ctx, seed); err != nil {
			return Snapshot{}, err
		}
		s.log.Info("No stored snapshot found, seeded demo dataset")
		return seed, nil
	}
	if err != nil {
		storeErr := apperrors.NewStorageError("snapshot_load", s.key, err)
		s.log.LogAppError(storeErr)
		return Snapshot{}, storeErr
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		recovered := apperrors.NewCorruptState(s.key, err)
		s.log.WithFields(recovered.LogFields()).Warn("Stored snapshot is unreadable, using seed dataset")
		metrics.IncrementSnapshotRecoveries()
		return Seed(s.now()), nil
	}
	return snap, nil
}

// save persists snap. Once a snapshot has been loaded the write is not
// abandoned when ctx is cancelled.
func (s *Store) save(ctx context.Context, snap Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return apperrors.NewInternalError("").WithInternal(err)
	}
	if err := s.backend.Set(context.WithoutCancel(ctx), s.key, data); err != nil {
		storeErr := apperrors.NewStorageError("snapshot_save", s.key, err)
		s.log.LogAppError(storeErr)
		return storeErr
	}
	metrics.SetSnapshotBytes(len(data))
	return nil
}

func (s *Store) read(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// update runs fn against the current snapshot and persists the result
// unless fn fails.
func (s *Store) update(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&snap); err != nil {
		return err
	}
	return s.save(ctx, snap)
}

func track(op string, start time.Time, errp *error) {
	metrics.RecordStoreOperation(op, time.Since(start).Seconds(), *errp)
}

// Read path

func (s *Store) Users(ctx context.Context) (users []User, err error) {
	defer track("users", time.Now(), &err)

	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Users, nil
}

func (s *Store) Activities(ctx context.Context) (activities []Activity, err error) {
	defer track("activities", time.Now(), &err)

	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Activities, nil
}

func (s *Store) Registrations(ctx context.Context) (registrations []Registration, err error) {
	defer track("registrations", time.Now(), &err)

	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Registrations, nil
}

// CurrentUser resolves the session pointer. It returns nil when nobody is
// logged in or the pointer names a user that no longer exists.
func (s *Store) CurrentUser(ctx context.Context) (user *User, err error) {
	defer track("currentUser", time.Now(), &err)

	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if snap.SessionUserID == nil {
		return nil, nil
	}
	if i := indexUser(snap.Users, *snap.SessionUserID); i >= 0 {
		u := snap.Users[i]
		return &u, nil
	}
	return nil, nil
}

// Session

// Login matches username and password exactly and sets the session.
func (s *Store) Login(ctx context.Context, username, password string) (user User, err error) {
	defer track("login", time.Now(), &err)

	err = s.update(ctx, func(snap *Snapshot) error {
		for _, u := range snap.Users {
			if u.Username == username && u.Password == password {
				user = u
				snap.SessionUserID = intPtr(u.ID)
				return nil
			}
		}
		return apperrors.NewInvalidCredentials()
	})
	metrics.RecordLoginAttempt(err == nil)
	return user, err
}

// LoginByID sets the session to a known user id without checking credentials.
func (s *Store) LoginByID(ctx context.Context, id int) (user User, err error) {
	defer track("loginById", time.Now(), &err)

	err = s.update(ctx, func(snap *Snapshot) error {
		i := indexUser(snap.Users, id)
		if i < 0 {
			return apperrors.NewNotFound("User", id)
		}
		user = snap.Users[i]
		snap.SessionUserID = intPtr(id)
		return nil
	})
	return user, err
}

// Logout clears the session. It succeeds when nobody is logged in.
func (s *Store) Logout(ctx context.Context) (err error) {
	defer track("logout", time.Now(), &err)

	return s.update(ctx, func(snap *Snapshot) error {
		snap.SessionUserID = nil
		return nil
	})
}

// Users

// CreateUser signs a new user up and logs them in.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (user User, err error) {
	defer track("createUser", time.Now(), &err)

	if in.Name == "" || in.Username == "" || in.Password == "" {
		return User{}, apperrors.NewValidationError("Please fill in all fields")
	}
	if in.Role == "" {
		in.Role = RoleStudent
	}
	if !in.Role.Valid() {
		return User{}, apperrors.NewValidationError("Role must be admin or student").
			WithDetails("role", in.Role)
	}

	err = s.update(ctx, func(snap *Snapshot) error {
		for _, u := range snap.Users {
			if strings.EqualFold(u.Username, in.Username) {
				return apperrors.NewUserExists(in.Username)
			}
		}

		id := 0
		for _, u := range snap.Users {
			id = max(id, u.ID)
		}
		user = User{
			ID:       id + 1,
			Username: in.Username,
			Password: in.Password,
			Name:     in.Name,
			Role:     in.Role,
		}
		snap.Users = append(snap.Users, user)
		snap.SessionUserID = intPtr(user.ID)
		return nil
	})
	if err == nil {
		metrics.IncrementSignups()
	}
	return user, err
}

// Activities

func (s *Store) CreateActivity(ctx context.Context, in NewActivity) (activity Activity, err error) {
	defer track("createActivity", time.Now(), &err)

	if err := validateCategory(in.Category); err != nil {
		return Activity{}, err
	}
	if err := validateDate(in.Date); err != nil {
		return Activity{}, err
	}

	err = s.update(ctx, func(snap *Snapshot) error {
		id := 0
		for _, a := range snap.Activities {
			id = max(id, a.ID)
		}
		activity = Activity{
			ID:          id + 1,
			Name:        in.Name,
			Description: in.Description,
			Date:        in.Date,
			Category:    in.Category,
		}
		snap.Activities = append(snap.Activities, activity)
		return nil
	})
	return activity, err
}

// UpdateActivity merges the non-nil fields of patch into activity id.
func (s *Store) UpdateActivity(ctx context.Context, id int, patch ActivityPatch) (activity Activity, err error) {
	defer track("updateActivity", time.Now(), &err)

	if patch.Category != nil {
		if err := validateCategory(*patch.Category); err != nil {
			return Activity{}, err
		}
	}
	if patch.Date != nil {
		if err := validateDate(*patch.Date); err != nil {
			return Activity{}, err
		}
	}

	err = s.update(ctx, func(snap *Snapshot) error {
		i := indexActivity(snap.Activities, id)
		if i < 0 {
			return apperrors.NewNotFound("Activity", id)
		}

		a := &snap.Activities[i]
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.Description != nil {
			a.Description = *patch.Description
		}
		if patch.Date != nil {
			a.Date = *patch.Date
		}
		if patch.Category != nil {
			a.Category = *patch.Category
		}
		activity = *a
		return nil
	})
	return activity, err
}

// DeleteActivity removes the activity and every registration for it.
// Deleting an unknown id succeeds.
func (s *Store) DeleteActivity(ctx context.Context, id int) (err error) {
	defer track("deleteActivity", time.Now(), &err)

	return s.update(ctx, func(snap *Snapshot) error {
		activities := snap.Activities[:0]
		for _, a := range snap.Activities {
			if a.ID != id {
				activities = append(activities, a)
			}
		}
		snap.Activities = activities

		registrations := snap.Registrations[:0]
		for _, r := range snap.Registrations {
			if r.ActivityID != id {
				registrations = append(registrations, r)
			}
		}
		snap.Registrations = registrations
		return nil
	})
}

// Registrations

// CreateRegistration fails with ALREADY_REGISTERED when the user has any
// registration for the activity, including a cancelled one.
func (s *Store) CreateRegistration(ctx context.Context, in NewRegistration) (reg Registration, err error) {
	defer track("createRegistration", time.Now(), &err)

	if in.Status == "" {
		in.Status = StatusRegistered
	}
	if err := validateStatus(in.Status); err != nil {
		return Registration{}, err
	}

	err = s.update(ctx, func(snap *Snapshot) error {
		for _, r := range snap.Registrations {
			if r.UserID == in.UserID && r.ActivityID == in.ActivityID {
				return apperrors.NewAlreadyRegistered(in.UserID, in.ActivityID)
			}
		}
		if indexUser(snap.Users, in.UserID) < 0 {
			return apperrors.NewNotFound("User", in.UserID)
		}
		if indexActivity(snap.Activities, in.ActivityID) < 0 {
			return apperrors.NewNotFound("Activity", in.ActivityID)
		}

		id := 0
		for _, r := range snap.Registrations {
			id = max(id, r.ID)
		}
		reg = Registration{
			ID:         id + 1,
			UserID:     in.UserID,
			ActivityID: in.ActivityID,
			Status:     in.Status,
		}
		snap.Registrations = append(snap.Registrations, reg)
		return nil
	})
	if err == nil {
		metrics.RecordRegistrationAction("create")
	}
	return reg, err
}

func (s *Store) UpdateRegistrationStatus(ctx context.Context, id int, status Status) (reg Registration, err error) {
	defer track("updateRegistrationStatus", time.Now(), &err)

	if err := validateStatus(status); err != nil {
		return Registration{}, err
	}

	err = s.update(ctx, func(snap *Snapshot) error {
		for i := range snap.Registrations {
			if snap.Registrations[i].ID == id {
				snap.Registrations[i].Status = status
				reg = snap.Registrations[i]
				return nil
			}
		}
		return apperrors.NewNotFound("Registration", id)
	})
	if err == nil {
		metrics.RecordRegistrationAction(string(status))
	}
	return reg, err
}

// DeleteRegistration removes registration id. Deleting an unknown id succeeds.
func (s *Store) DeleteRegistration(ctx context.Context, id int) (err error) {
	defer track("deleteRegistration", time.Now(), &err)

	err = s.update(ctx, func(snap *Snapshot) error {
		registrations := snap.Registrations[:0]
		for _, r := range snap.Registrations {
			if r.ID != id {
				registrations = append(registrations, r)
			}
		}
		snap.Registrations = registrations
		return nil
	})
	if err == nil {
		metrics.RecordRegistrationAction("delete")
	}
	return err
}

func indexUser(users []User, id int) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func indexActivity(activities []Activity, id int) int {
	for i, a := range activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func intPtr(v int) *int {
	return &v
}
