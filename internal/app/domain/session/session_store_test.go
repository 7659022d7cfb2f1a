package session

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/credstore"
	"github.com/novamart/admin-console/internal/app/models"
	"github.com/novamart/admin-console/internal/pkg/config"
	"github.com/novamart/admin-console/internal/pkg/platform"
)

// MockCredStore is a mock implementation of the CredentialStore interface
type MockCredStore struct {
	mock.Mock
}

func (m *MockCredStore) Load(ctx context.Context) (*credstore.StoredCredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credstore.StoredCredential), args.Error(1)
}

func (m *MockCredStore) Save(ctx context.Context, token string, userJSON []byte) error {
	args := m.Called(ctx, token, userJSON)
	return args.Error(0)
}

func (m *MockCredStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPlatform is a mock implementation of the PlatformClient interface
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) SignIn(ctx context.Context, emailOrPhone, password string) (*models.Credentials, error) {
	args := m.Called(ctx, emailOrPhone, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credentials), args.Error(1)
}

func (m *MockPlatform) Profile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockPlatform) SetToken(token string) {
	m.Called(token)
}

func (m *MockPlatform) ClearToken() {
	m.Called()
}

// MockNotifier is a mock implementation of the notify.Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Success(message string) {
	m.Called(message)
}

func (m *MockNotifier) Error(message string) {
	m.Called(message)
}

func testConfig() *config.Config {
	return &config.Config{
		SignInPath:  "/auth/signin",
		LandingPath: "/console",
		PendingPath: "/pending",
	}
}

func newTestStore(creds *MockCredStore, api *MockPlatform, notifier *MockNotifier) *StoreImpl {
	return NewStore(creds, api, notifier, testConfig(), nil, zap.NewNop())
}

func adminUser() *models.User {
	return &models.User{ID: "u1", Email: "ops@example.com", Role: models.RoleAdmin}
}

func TestInitialize(t *testing.T) {
	t.Run("ValidCredential", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		user := adminUser()
		userJSON, err := json.Marshal(user)
		require.NoError(t, err)

		creds.On("Load", mock.Anything).Return(&credstore.StoredCredential{Token: "T", UserJSON: userJSON}, nil).Once()
		api.On("SetToken", "T").Once()

		store.Initialize(context.Background())

		assert.True(t, store.Initialized())
		assert.False(t, store.Loading())
		assert.Equal(t, user, store.User())
		creds.AssertExpectations(t)
		api.AssertExpectations(t)
	})

	t.Run("EmptyStore", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		creds.On("Load", mock.Anything).Return(nil, models.ErrNoCredential).Once()

		store.Initialize(context.Background())

		assert.True(t, store.Initialized())
		assert.Nil(t, store.User())
		api.AssertNotCalled(t, "SetToken", mock.Anything)
		creds.AssertExpectations(t)
	})

	t.Run("CorruptUserRecord", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		creds.On("Load", mock.Anything).Return(&credstore.StoredCredential{Token: "T", UserJSON: []byte(`{not json`)}, nil).Once()

		// Must not panic; a corrupt record is "no session".
		assert.NotPanics(t, func() { store.Initialize(context.Background()) })

		assert.True(t, store.Initialized())
		assert.Nil(t, store.User())
		api.AssertNotCalled(t, "SetToken", mock.Anything)
		creds.AssertExpectations(t)
	})

	t.Run("SecondCallSameOutcome", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		creds.On("Load", mock.Anything).Return(nil, models.ErrNoCredential).Twice()

		store.Initialize(context.Background())
		store.Initialize(context.Background())

		assert.True(t, store.Initialized())
		assert.Nil(t, store.User())
		creds.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		user := adminUser()
		userJSON, err := json.Marshal(user)
		require.NoError(t, err)

		api.On("SignIn", mock.Anything, "ops@example.com", "secret").
			Return(&models.Credentials{Token: "T", User: user}, nil).Once()
		api.On("SetToken", "T").Once()
		creds.On("Save", mock.Anything, "T", userJSON).Return(nil).Once()

		var navigatedTo []string
		store.Login(context.Background(), LoginInput{
			EmailOrPhone: "ops@example.com",
			Password:     "secret",
			Navigate:     func(path string) { navigatedTo = append(navigatedTo, path) },
		})

		assert.Equal(t, user, store.User())
		assert.False(t, store.Loading())
		assert.Equal(t, []string{"/console"}, navigatedTo)
		notifier.AssertNotCalled(t, "Error", mock.Anything)
		creds.AssertExpectations(t)
		api.AssertExpectations(t)
	})

	t.Run("FailureLeavesStateUntouched", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		api.On("SignIn", mock.Anything, "ops@example.com", "wrong").
			Return(nil, &platform.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}).Once()
		notifier.On("Error", "invalid credentials").Once()

		navigated := false
		store.Login(context.Background(), LoginInput{
			EmailOrPhone: "ops@example.com",
			Password:     "wrong",
			Navigate:     func(string) { navigated = true },
		})

		assert.Nil(t, store.User())
		assert.False(t, store.Loading())
		assert.False(t, navigated)
		api.AssertNotCalled(t, "SetToken", mock.Anything)
		creds.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertExpectations(t)
		api.AssertExpectations(t)
	})

	t.Run("FailureWithoutServerMessage", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		api.On("SignIn", mock.Anything, "ops@example.com", "wrong").
			Return(nil, &platform.APIError{StatusCode: http.StatusBadGateway}).Once()
		notifier.On("Error", "Unable to sign in. Please check your credentials and try again.").Once()

		store.Login(context.Background(), LoginInput{EmailOrPhone: "ops@example.com", Password: "wrong"})

		notifier.AssertExpectations(t)
	})

	t.Run("FailureDoesNotClearExistingSession", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		user := adminUser()
		userJSON, err := json.Marshal(user)
		require.NoError(t, err)
		creds.On("Load", mock.Anything).Return(&credstore.StoredCredential{Token: "T", UserJSON: userJSON}, nil).Once()
		api.On("SetToken", "T").Once()
		store.Initialize(context.Background())

		api.On("SignIn", mock.Anything, "other@example.com", "wrong").
			Return(nil, &platform.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}).Once()
		notifier.On("Error", "invalid credentials").Once()

		store.Login(context.Background(), LoginInput{EmailOrPhone: "other@example.com", Password: "wrong"})

		// Pre-existing session survives a failed login for a different account.
		assert.Equal(t, user, store.User())
		api.AssertNotCalled(t, "ClearToken")
		creds.AssertNotCalled(t, "Clear", mock.Anything)
	})
}

func TestLogout(t *testing.T) {
	creds := new(MockCredStore)
	api := new(MockPlatform)
	notifier := new(MockNotifier)
	store := newTestStore(creds, api, notifier)

	user := adminUser()
	userJSON, err := json.Marshal(user)
	require.NoError(t, err)
	creds.On("Load", mock.Anything).Return(&credstore.StoredCredential{Token: "T", UserJSON: userJSON}, nil).Once()
	api.On("SetToken", "T").Once()
	store.Initialize(context.Background())
	require.NotNil(t, store.User())

	creds.On("Clear", mock.Anything).Return(nil).Once()
	api.On("ClearToken").Once()
	notifier.On("Success", mock.AnythingOfType("string")).Once()

	var navigatedTo []string
	store.Logout(context.Background(), func(path string) { navigatedTo = append(navigatedTo, path) })

	assert.Nil(t, store.User())
	assert.True(t, store.Initialized(), "logout must not reset initialized")
	assert.False(t, store.Loading())
	assert.Equal(t, []string{"/auth/signin"}, navigatedTo)
	creds.AssertExpectations(t)
	api.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestLogoutWithoutNavigate(t *testing.T) {
	creds := new(MockCredStore)
	api := new(MockPlatform)
	notifier := new(MockNotifier)
	store := newTestStore(creds, api, notifier)

	creds.On("Clear", mock.Anything).Return(nil).Once()
	api.On("ClearToken").Once()
	notifier.On("Success", mock.AnythingOfType("string")).Once()

	assert.NotPanics(t, func() { store.Logout(context.Background(), nil) })
	assert.Nil(t, store.User())
}

func TestFetchProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		user := adminUser()
		userJSON, err := json.Marshal(user)
		require.NoError(t, err)
		creds.On("Load", mock.Anything).Return(&credstore.StoredCredential{Token: "T", UserJSON: userJSON}, nil).Once()
		api.On("SetToken", "T").Once()
		store.Initialize(context.Background())

		refreshed := &models.User{ID: "u1", Email: "ops@example.com", Name: "Ops", Role: models.RoleSeller, VerificationStatus: models.VerificationApproved}
		refreshedJSON, err := json.Marshal(refreshed)
		require.NoError(t, err)

		api.On("Profile", mock.Anything, "u1").Return(refreshed, nil).Once()
		creds.On("Save", mock.Anything, "T", refreshedJSON).Return(nil).Once()

		got, err := store.FetchProfile(context.Background(), "u1")
		require.NoError(t, err)

		// Full replacement, not a merge.
		assert.Equal(t, refreshed, got)
		assert.Equal(t, refreshed, store.User())
		assert.False(t, store.Loading())
		creds.AssertExpectations(t)
		api.AssertExpectations(t)
	})

	t.Run("FailureReturnsError", func(t *testing.T) {
		creds := new(MockCredStore)
		api := new(MockPlatform)
		notifier := new(MockNotifier)
		store := newTestStore(creds, api, notifier)

		upstreamErr := &platform.APIError{StatusCode: http.StatusNotFound, Message: "user not found"}
		api.On("Profile", mock.Anything, "missing").Return(nil, upstreamErr).Once()
		notifier.On("Error", mock.AnythingOfType("string")).Once()

		got, err := store.FetchProfile(context.Background(), "missing")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, upstreamErr)
		assert.False(t, store.Loading())
		creds.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertExpectations(t)
	})
}
