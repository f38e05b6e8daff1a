package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campusconnect/apperrors"
	"campusconnect/infrastructure/kv"
	"campusconnect/pkg/logger"

	"github.com/stretchr/testify/suite"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type StoreTestSuite struct {
	suite.Suite
	Backend *kv.Memory
	Store   *Store
	Ctx     context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.Ctx = context.Background()
	s.Backend = kv.NewMemory()
	s.Store = NewStore(s.Backend, DefaultKey, logger.Discard(), WithClock(func() time.Time { return fixedNow }))
}

// putSnapshot replaces the stored blob with snap.
func (s *StoreTestSuite) putSnapshot(snap Snapshot) {
	data, err := EncodeSnapshot(snap)
	s.Require().NoError(err)
	s.Require().NoError(s.Backend.Set(s.Ctx, DefaultKey, data))
}

func (s *StoreTestSuite) stored() string {
	data, err := s.Backend.Get(s.Ctx, DefaultKey)
	s.Require().NoError(err)
	return data
}

func (s *StoreTestSuite) TestFirstReadSeedsAndPersists() {
	users, err := s.Store.Users(s.Ctx)
	s.Require().NoError(err)
	s.Len(users, 3)
	s.Equal("Admin Alice", users[0].Name)
	s.Equal(RoleAdmin, users[0].Role)

	decoded, err := DecodeSnapshot(s.stored())
	s.Require().NoError(err)
	s.Equal(Seed(fixedNow), decoded)

	activities, err := s.Store.Activities(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(activities, 3)
	s.Equal("2025-03-12T09:30:00.000Z", activities[0].Date)

	current, err := s.Store.CurrentUser(s.Ctx)
	s.NoError(err)
	s.Nil(current)
}

func (s *StoreTestSuite) TestCorruptSnapshotFallsBackToSeed() {
	s.Require().NoError(s.Backend.Set(s.Ctx, DefaultKey, `{"users":[{"id":1,"name":"tru`))

	users, err := s.Store.Users(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal([]string{"Admin Alice", "Student Bob", "Student Charlie"},
		[]string{users[0].Name, users[1].Name, users[2].Name})

	// the unreadable blob is left alone by reads
	s.Equal(`{"users":[{"id":1,"name":"tru`, s.stored())
}

func (s *StoreTestSuite) TestNewerSnapshotVersionIsTreatedAsCorrupt() {
	s.Require().NoError(s.Backend.Set(s.Ctx, DefaultKey, `{"version":99,"users":[],"activities":[],"registrations":[],"sessionUserId":null}`))

	users, err := s.Store.Users(s.Ctx)
	s.Require().NoError(err)
	s.Len(users, 3)
}

func (s *StoreTestSuite) TestUnversionedSnapshotIsAccepted() {
	s.Require().NoError(s.Backend.Set(s.Ctx, DefaultKey,
		`{"users":[{"id":7,"username":"zoe","password":"pw","name":"Zoe","role":"student"}],"activities":[],"registrations":[],"sessionUserId":7}`))

	current, err := s.Store.CurrentUser(s.Ctx)
	s.Require().NoError(err)
	s.Require().NotNil(current)
	s.Equal("Zoe", current.Name)
}

func (s *StoreTestSuite) TestCreateActivityIDsIncrease() {
	in := NewActivity{Name: "Chess", Description: "Weekly", Date: "2025-04-01T18:00:00.000Z", Category: CategoryClub}

	last := 0
	for i := 0; i < 5; i++ {
		a, err := s.Store.CreateActivity(s.Ctx, in)
		s.Require().NoError(err)
		s.Greater(a.ID, last)
		last = a.ID
	}

	// ids continue from the maximum, not from the count
	s.Require().NoError(s.Store.DeleteActivity(s.Ctx, 2))
	a, err := s.Store.CreateActivity(s.Ctx, in)
	s.Require().NoError(err)
	s.Equal(last+1, a.ID)
}

func (s *StoreTestSuite) TestCreateActivityOnEmptyStoreStartsAtOne() {
	s.putSnapshot(Snapshot{})

	a, err := s.Store.CreateActivity(s.Ctx, NewActivity{Name: "Robotics", Date: "2025-05-01T10:00:00Z", Category: CategoryEvent})
	s.Require().NoError(err)
	s.Equal(1, a.ID)
}

func (s *StoreTestSuite) TestCreateActivityValidation() {
	_, err := s.Store.CreateActivity(s.Ctx, NewActivity{Name: "X", Date: "2025-05-01T10:00:00Z", Category: "party"})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))

	_, err = s.Store.CreateActivity(s.Ctx, NewActivity{Name: "X", Date: "next friday", Category: CategorySport})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))
}

func (s *StoreTestSuite) TestUpdateActivityMergesGivenFields() {
	name := "Soccer Tryouts (moved)"
	a, err := s.Store.UpdateActivity(s.Ctx, 1, ActivityPatch{Name: &name})
	s.Require().NoError(err)

	s.Equal(name, a.Name)
	s.Equal("Open tryouts for the varsity soccer team. Bring cleats and water.", a.Description)
	s.Equal(CategorySport, a.Category)

	activities, err := s.Store.Activities(s.Ctx)
	s.Require().NoError(err)
	s.Equal(a, activities[0])
}

func (s *StoreTestSuite) TestUpdateMissingActivityLeavesStoreUnchanged() {
	_, err := s.Store.Users(s.Ctx)
	s.Require().NoError(err)
	before := s.stored()

	name := "X"
	_, err = s.Store.UpdateActivity(s.Ctx, 99, ActivityPatch{Name: &name})
	s.Require().Error(err)
	s.True(apperrors.IsNotFound(err))
	s.Equal(before, s.stored())
}

func (s *StoreTestSuite) TestDeleteActivityCascades() {
	_, err := s.Store.CreateRegistration(s.Ctx, NewRegistration{UserID: 3, ActivityID: 2})
	s.Require().NoError(err)

	s.Require().NoError(s.Store.DeleteActivity(s.Ctx, 2))

	regs, err := s.Store.Registrations(s.Ctx)
	s.Require().NoError(err)
	for _, r := range regs {
		s.NotEqual(2, r.ActivityID)
	}
	s.Len(regs, 1)

	activities, err := s.Store.Activities(s.Ctx)
	s.Require().NoError(err)
	s.Len(activities, 2)
}

func (s *StoreTestSuite) TestDeleteActivityIsIdempotent() {
	s.NoError(s.Store.DeleteActivity(s.Ctx, 42))
	s.NoError(s.Store.DeleteActivity(s.Ctx, 1))
	s.NoError(s.Store.DeleteActivity(s.Ctx, 1))

	activities, err := s.Store.Activities(s.Ctx)
	s.Require().NoError(err)
	s.Len(activities, 2)
}

func (s *StoreTestSuite) TestRegistrationScenario() {
	s.putSnapshot(Snapshot{
		Users: []User{
			{ID: 1, Username: "admin", Password: "admin123", Name: "Admin", Role: RoleAdmin},
			{ID: 2, Username: "bob", Password: "bob123", Name: "Bob", Role: RoleStudent},
		},
		Activities: []Activity{
			{ID: 1, Name: "Soccer", Date: FormatDate(fixedNow.Add(2 * day)), Category: CategorySport},
		},
		Registrations: []Registration{},
	})

	reg, err := s.Store.CreateRegistration(s.Ctx, NewRegistration{UserID: 2, ActivityID: 1, Status: StatusRegistered})
	s.Require().NoError(err)
	s.Equal(Registration{ID: 1, UserID: 2, ActivityID: 1, Status: StatusRegistered}, reg)

	_, err = s.Store.CreateRegistration(s.Ctx, NewRegistration{UserID: 2, ActivityID: 1, Status: StatusRegistered})
	s.Require().Error(err)
	s.True(apperrors.IsConflict(err))

	regs, err := s.Store.Registrations(s.Ctx)
	s.Require().NoError(err)
	s.Len(regs, 1)
}

func (s *StoreTestSuite) TestCancelledRegistrationStillBlocksReRegistration() {
	reg, err := s.Store.CreateRegistration(s.Ctx, NewRegistration{UserID: 2, ActivityID: 1})
	s.Require().NoError(err)
	s.Equal(StatusRegistered, reg.Status)

	_, err = s.Store.UpdateRegistrationStatus(s.Ctx, reg.ID, StatusCancelled)
	s.Require().NoError(err)

	_, err = s.Store.CreateRegistration(s.Ctx, NewRegistration{UserID: 2, ActivityID: 1})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeAlreadyRegistered))
}

func (s *StoreTestSuite) TestCreateRegistrationUnknownReferences() {
	_, err := s.Store.CreateRegistration(s.Ctx, NewRegistration{UserID: 99, ActivityID: 1})
	s.True(apperrors.IsNotFound(err))

	_, err = s.Store.CreateRegistration(s.Ctx, NewRegistration{UserID: 2, ActivityID: 99})
	s.True(apperrors.IsNotFound(err))

	_, err = s.Store.CreateRegistration(s.Ctx, NewRegistration{UserID: 2, ActivityID: 1, Status: "maybe"})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))
}

func (s *StoreTestSuite) TestUpdateRegistrationStatus() {
	reg, err := s.Store.UpdateRegistrationStatus(s.Ctx, 1, StatusAttended)
	s.Require().NoError(err)
	s.Equal(StatusAttended, reg.Status)

	_, err = s.Store.UpdateRegistrationStatus(s.Ctx, 99, StatusAttended)
	s.True(apperrors.IsNotFound(err))
}

func (s *StoreTestSuite) TestDeleteRegistrationOnlyRemovesThatRegistration() {
	s.Require().NoError(s.Store.DeleteRegistration(s.Ctx, 1))
	s.Require().NoError(s.Store.DeleteRegistration(s.Ctx, 1))

	regs, err := s.Store.Registrations(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]Registration{{ID: 2, UserID: 3, ActivityID: 3, Status: StatusRegistered}}, regs)

	activities, err := s.Store.Activities(s.Ctx)
	s.Require().NoError(err)
	s.Len(activities, 3)
}

func (s *StoreTestSuite) TestLogin() {
	u, err := s.Store.Login(s.Ctx, "admin", "admin123")
	s.Require().NoError(err)
	s.Equal(1, u.ID)

	current, err := s.Store.CurrentUser(s.Ctx)
	s.Require().NoError(err)
	s.Require().NotNil(current)
	s.Equal(u, *current)
}

func (s *StoreTestSuite) TestBadLoginKeepsSession() {
	_, err := s.Store.Login(s.Ctx, "bob", "bob123")
	s.Require().NoError(err)

	for _, creds := range [][2]string{{"bob", "wrong"}, {"BOB", "bob123"}, {"nobody", "x"}} {
		_, err = s.Store.Login(s.Ctx, creds[0], creds[1])
		s.True(apperrors.IsInvalidCredentials(err), creds[0])
	}

	current, err := s.Store.CurrentUser(s.Ctx)
	s.Require().NoError(err)
	s.Require().NotNil(current)
	s.Equal("bob", current.Username)
}

func (s *StoreTestSuite) TestLoginByID() {
	u, err := s.Store.LoginByID(s.Ctx, 3)
	s.Require().NoError(err)
	s.Equal("Student Charlie", u.Name)

	_, err = s.Store.LoginByID(s.Ctx, 42)
	s.True(apperrors.IsNotFound(err))

	current, err := s.Store.CurrentUser(s.Ctx)
	s.Require().NoError(err)
	s.Require().NotNil(current)
	s.Equal(3, current.ID)
}

func (s *StoreTestSuite) TestLogoutAlwaysSucceeds() {
	s.Require().NoError(s.Store.Logout(s.Ctx))

	_, err := s.Store.LoginByID(s.Ctx, 1)
	s.Require().NoError(err)
	s.Require().NoError(s.Store.Logout(s.Ctx))

	current, err := s.Store.CurrentUser(s.Ctx)
	s.NoError(err)
	s.Nil(current)
}

func (s *StoreTestSuite) TestStaleSessionResolvesToNil() {
	stale := 9
	snap := Seed(fixedNow)
	snap.SessionUserID = &stale
	s.putSnapshot(snap)

	current, err := s.Store.CurrentUser(s.Ctx)
	s.NoError(err)
	s.Nil(current)
}

func (s *StoreTestSuite) TestCreateUserSignsUpAndLogsIn() {
	u, err := s.Store.CreateUser(s.Ctx, NewUser{Username: "dana", Password: "pw", Name: "Dana", Role: RoleStudent})
	s.Require().NoError(err)
	s.Equal(4, u.ID)

	current, err := s.Store.CurrentUser(s.Ctx)
	s.Require().NoError(err)
	s.Require().NotNil(current)
	s.Equal(u, *current)

	logged, err := s.Store.Login(s.Ctx, "dana", "pw")
	s.Require().NoError(err)
	s.Equal(u, logged)
}

func (s *StoreTestSuite) TestCreateUserRejectsCaseInsensitiveDuplicate() {
	_, err := s.Store.CreateUser(s.Ctx, NewUser{Username: "Admin", Password: "pw", Name: "Other", Role: RoleStudent})
	s.True(apperrors.IsConflict(err))

	users, err := s.Store.Users(s.Ctx)
	s.Require().NoError(err)
	s.Len(users, 3)
}

func (s *StoreTestSuite) TestCreateUserValidation() {
	_, err := s.Store.CreateUser(s.Ctx, NewUser{Username: "dana", Password: "", Name: "Dana"})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))

	_, err = s.Store.CreateUser(s.Ctx, NewUser{Username: "dana", Password: "pw", Name: "Dana", Role: "teacher"})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeValidationFailed))

	u, err := s.Store.CreateUser(s.Ctx, NewUser{Username: "dana", Password: "pw", Name: "Dana"})
	s.Require().NoError(err)
	s.Equal(RoleStudent, u.Role)
}

func (s *StoreTestSuite) TestConcurrentWritesAreNotLost() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Store.CreateActivity(s.Ctx, NewActivity{Name: "Club", Date: "2025-04-01T18:00:00Z", Category: CategoryClub})
			s.NoError(err)
		}()
	}
	wg.Wait()

	activities, err := s.Store.Activities(s.Ctx)
	s.Require().NoError(err)
	s.Len(activities, 23)

	seen := make(map[int]bool)
	for _, a := range activities {
		s.False(seen[a.ID], "duplicate id %d", a.ID)
		seen[a.ID] = true
	}
}

type failingBackend struct {
	kv.Backend
	err error
}

func (f failingBackend) Get(ctx context.Context, key string) (string, error) {
	return "", f.err
}

func (s *StoreTestSuite) TestBackendFailureIsStorageError() {
	down := errors.New("disk on fire")
	store := NewStore(failingBackend{Backend: s.Backend, err: down}, DefaultKey, logger.Discard())

	_, err := store.Activities(s.Ctx)
	s.Require().Error(err)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorage))
	s.ErrorIs(err, down)
}

func (s *StoreTestSuite) TestCancelledContextBeforeLoad() {
	ctx, cancel := context.WithCancel(s.Ctx)
	cancel()

	_, err := s.Store.CreateActivity(ctx, NewActivity{Name: "X", Date: "2025-04-01T18:00:00Z", Category: CategoryClub})
	s.Require().Error(err)
	s.ErrorIs(err, context.Canceled)

	_, err = s.Backend.Get(s.Ctx, DefaultKey)
	s.ErrorIs(err, kv.ErrNotFound)
}
