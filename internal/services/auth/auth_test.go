package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/salary-tracker/internal/apperr"
	"github.com/magabrotheeeer/salary-tracker/internal/kvstore"
	"github.com/magabrotheeeer/salary-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/salary-tracker/internal/models"
	services "github.com/magabrotheeeer/salary-tracker/internal/services/auth"
	"github.com/magabrotheeeer/salary-tracker/internal/storage"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) LoadUsers(ctx context.Context) ([]models.User, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]models.User), args.Bool(1)
}

func (m *UserRepoMock) SaveUsers(ctx context.Context, users []models.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *UserRepoMock) LoadCurrentUser(ctx context.Context) *models.User {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.User)
}

func (m *UserRepoMock) SaveCurrentUser(ctx context.Context, user models.User) {
	m.Called(ctx, user)
}

func (m *UserRepoMock) ClearCurrentUser(ctx context.Context) {
	m.Called(ctx)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(repo services.UserRepository) *services.AuthService {
	return services.NewAuthService(repo, sl.Discard(), nil,
		services.WithIDGenerator(func() string { return "user-1" }),
		services.WithClock(func() time.Time { return fixedNow }),
	)
}

func validRequest() models.RegisterRequest {
	return models.RegisterRequest{
		FirstName: "Ali",
		LastName:  "Veli",
		Username:  "ali",
		Password:  "1234",
		Role:      models.RoleIndividual,
	}
}

func TestAuthService_Register(t *testing.T) {
	existing := models.User{ID: "0", Username: "ali", Password: "x", Role: models.RoleCompany}

	tests := []struct {
		name       string
		req        func() models.RegisterRequest
		setupMocks func(r *UserRepoMock)
		wantErr    bool
		wantField  string
	}{
		{
			name: "success",
			req:  validRequest,
			setupMocks: func(r *UserRepoMock) {
				want := models.User{
					ID: "user-1", FirstName: "Ali", LastName: "Veli", Username: "ali", Password: "1234",
					Role: models.RoleIndividual, CreatedAt: "2024-06-01T12:00:00Z",
				}
				r.On("LoadUsers", mock.Anything).Return(nil, false)
				r.On("SaveUsers", mock.Anything, []models.User{want}).Return(nil)
				r.On("SaveCurrentUser", mock.Anything, want).Return()
			},
		},
		{
			name: "blank first name",
			req: func() models.RegisterRequest {
				r := validRequest()
				r.FirstName = "   "
				return r
			},
			wantErr:   true,
			wantField: "FirstName",
		},
		{
			name: "blank last name",
			req: func() models.RegisterRequest {
				r := validRequest()
				r.LastName = ""
				return r
			},
			wantErr:   true,
			wantField: "LastName",
		},
		{
			name: "blank username",
			req: func() models.RegisterRequest {
				r := validRequest()
				r.Username = "\t"
				return r
			},
			wantErr:   true,
			wantField: "Username",
		},
		{
			name: "short password",
			req: func() models.RegisterRequest {
				r := validRequest()
				r.Password = "123"
				return r
			},
			wantErr:   true,
			wantField: "Password",
		},
		{
			name: "unknown role",
			req: func() models.RegisterRequest {
				r := validRequest()
				r.Role = "admin"
				return r
			},
			wantErr:   true,
			wantField: "Role",
		},
		{
			name: "duplicate username",
			req:  validRequest,
			setupMocks: func(r *UserRepoMock) {
				r.On("LoadUsers", mock.Anything).Return([]models.User{existing}, true)
			},
			wantErr:   true,
			wantField: "Username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}
			svc := newService(repo)

			session, err := svc.Register(context.Background(), tt.req())

			if tt.wantErr {
				var verr *apperr.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.False(t, session.Authenticated())
				repo.AssertNotCalled(t, "SaveUsers", mock.Anything, mock.Anything)
				repo.AssertNotCalled(t, "SaveCurrentUser", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.True(t, session.Authenticated())
			assert.True(t, session.IsIndividual())
			assert.False(t, session.IsCompany())
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_SaveRefused(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("LoadUsers", mock.Anything).Return(nil, false)
	repo.On("SaveUsers", mock.Anything, mock.Anything).Return(apperr.ErrCorrupted)
	svc := newService(repo)

	session, err := svc.Register(context.Background(), validRequest())

	assert.ErrorIs(t, err, apperr.ErrCorrupted)
	assert.False(t, session.Authenticated())
	repo.AssertNotCalled(t, "SaveCurrentUser", mock.Anything, mock.Anything)
}

func TestAuthService_Register_CorruptedUserList(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	stored := `[{"id":"0","username":"ali","password":"1234","role":"individual"},` +
		`{"id":"9","username":"eve","password":"x","role":"admin"}]`
	require.NoError(t, store.Set(ctx, storage.KeyUsers, stored))
	svc := newService(storage.New(store, sl.Discard(), nil))

	_, err := svc.Register(ctx, validRequest())
	assert.ErrorIs(t, err, apperr.ErrCorrupted)

	raw, found, err := store.Get(ctx, storage.KeyUsers)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, stored, raw, "corrupted list must not be overwritten")
	assert.False(t, svc.CurrentSession(ctx).Authenticated())
}

func TestAuthService_Login(t *testing.T) {
	user := models.User{ID: "1", Username: "acme", Password: "secret", Role: models.RoleCompany}

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:     "success",
			username: "acme",
			password: "secret",
			setupMocks: func(r *UserRepoMock) {
				r.On("LoadUsers", mock.Anything).Return([]models.User{user}, true)
				r.On("SaveCurrentUser", mock.Anything, user).Return()
			},
		},
		{
			name:     "no users stored",
			username: "acme",
			password: "secret",
			setupMocks: func(r *UserRepoMock) {
				r.On("LoadUsers", mock.Anything).Return(nil, false)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:     "wrong password",
			username: "acme",
			password: "Secret",
			setupMocks: func(r *UserRepoMock) {
				r.On("LoadUsers", mock.Anything).Return([]models.User{user}, true)
			},
			wantErr: apperr.ErrInvalidCredentials,
		},
		{
			name:     "username is case sensitive",
			username: "ACME",
			password: "secret",
			setupMocks: func(r *UserRepoMock) {
				r.On("LoadUsers", mock.Anything).Return([]models.User{user}, true)
			},
			wantErr: apperr.ErrInvalidCredentials,
		},
		{
			name:     "empty list",
			username: "acme",
			password: "secret",
			setupMocks: func(r *UserRepoMock) {
				r.On("LoadUsers", mock.Anything).Return([]models.User{}, true)
			},
			wantErr: apperr.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc := newService(repo)

			session, err := svc.Login(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, session.Authenticated())
				repo.AssertNotCalled(t, "SaveCurrentUser", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, session.User)
			assert.Equal(t, user, *session.User)
			assert.True(t, session.IsCompany())
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Flow(t *testing.T) {
	store := kvstore.NewMemory()
	repo := storage.New(store, sl.Discard(), nil)
	svc := newService(repo)
	ctx := context.Background()

	assert.False(t, svc.CurrentSession(ctx).Authenticated())

	session, err := svc.Register(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, session, svc.CurrentSession(ctx))

	_, err = svc.Register(ctx, validRequest())
	assert.ErrorIs(t, err, apperr.ErrValidation)
	users, _ := repo.LoadUsers(ctx)
	assert.Len(t, users, 1, "rejected registration must not grow the list")

	assert.False(t, svc.Logout(ctx).Authenticated())
	assert.False(t, svc.CurrentSession(ctx).Authenticated())

	_, err = svc.Login(ctx, "ali", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.False(t, svc.CurrentSession(ctx).Authenticated(), "failed login must not open a session")

	session, err = svc.Login(ctx, "ali", "1234")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.User.ID)

	_, err = svc.Login(ctx, "ali", "wrong")
	require.Error(t, err)
	current := svc.CurrentSession(ctx)
	require.True(t, current.Authenticated(), "failed login must keep the existing session")
	assert.Equal(t, "user-1", current.User.ID)
}

func TestAuthService_CurrentSession_Malformed(t *testing.T) {
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(context.Background(), storage.KeyCurrentUser, "{not json"))
	svc := newService(storage.New(store, sl.Discard(), nil))

	assert.False(t, svc.CurrentSession(context.Background()).Authenticated())
}

func TestAuthService_RegisterKeepsInputAsEntered(t *testing.T) {
	repo := storage.New(kvstore.NewMemory(), sl.Discard(), nil)
	svc := newService(repo)

	req := validRequest()
	req.FirstName = " Ali "
	session, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, " Ali ", session.User.FirstName)
}

func TestSession_ZeroValue(t *testing.T) {
	var s services.Session

	assert.False(t, s.Authenticated())
	assert.False(t, s.IsCompany())
	assert.False(t, s.IsIndividual())
}
