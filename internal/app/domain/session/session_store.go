// Package session holds the console's in-memory session state: the signed-in
// account, the loading flag for in-flight platform calls, and the one-shot
// initialized flag set after rehydration from the credential store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/credstore"
	"github.com/novamart/admin-console/internal/app/models"
	"github.com/novamart/admin-console/internal/app/notify"
	"github.com/novamart/admin-console/internal/app/observability/metrics"
	"github.com/novamart/admin-console/internal/pkg/config"
	"github.com/novamart/admin-console/internal/pkg/platform"
)

// CredentialStore is the durable storage contract for the persisted
// credential pair.
type CredentialStore interface {
	// Load reads both keys; returns models.ErrNoCredential when either is absent.
	Load(ctx context.Context) (*credstore.StoredCredential, error)
	// Save writes token and serialized user atomically.
	Save(ctx context.Context, token string, userJSON []byte) error
	// Clear removes both keys atomically.
	Clear(ctx context.Context) error
}

// PlatformClient is the slice of the platform API facade the session needs:
// the two auth-related endpoints plus control of the shared bearer slot.
type PlatformClient interface {
	SignIn(ctx context.Context, emailOrPhone, password string) (*models.Credentials, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	SetToken(token string)
	ClearToken()
}

// LoginInput carries the sign-in form fields plus the caller-supplied
// navigation callback invoked on success.
type LoginInput struct {
	EmailOrPhone string
	Password     string
	Navigate     func(path string)
}

// Store defines the session state machine contract.
type Store interface {
	// Initialize rehydrates the session from the credential store. Never
	// fails: missing or corrupt persisted state means "no session".
	Initialize(ctx context.Context)
	// Login exchanges credentials with the platform. Failure is surfaced
	// through the notifier; state is untouched on failure.
	Login(ctx context.Context, input LoginInput)
	// Logout clears the persisted credential, the bearer slot, and the
	// in-memory user. navigate, when non-nil, receives the sign-in path.
	Logout(ctx context.Context, navigate func(path string))
	// FetchProfile refreshes the account record, replacing it wholesale and
	// re-persisting the credential pair. The error is returned so callers can
	// chain their own handling.
	FetchProfile(ctx context.Context, userID string) (*models.User, error)

	User() *models.User
	Loading() bool
	Initialized() bool
}

var _ Store = (*StoreImpl)(nil)

// StoreImpl is the single process-wide session store. Constructed once at
// startup and passed by reference; all mutation goes through the mutex.
type StoreImpl struct {
	logger   *zap.Logger
	creds    CredentialStore
	api      PlatformClient
	notifier notify.Notifier
	cfg      *config.Config
	metrics  *metrics.AppMetrics

	mu          sync.Mutex
	user        *models.User
	token       string
	loading     bool
	initialized bool
}

// NewStore creates the session store. appMetrics may be nil (tests).
func NewStore(creds CredentialStore, api PlatformClient, notifier notify.Notifier, cfg *config.Config, appMetrics *metrics.AppMetrics, logger *zap.Logger) *StoreImpl {
	return &StoreImpl{
		logger:   logger,
		creds:    creds,
		api:      api,
		notifier: notifier,
		cfg:      cfg,
		metrics:  appMetrics,
	}
}

// Initialize performs the rehydration pass. Intended to run once before the
// listener starts; a second call re-reads the same source and lands in the
// same state, and initialized never resets.
func (s *StoreImpl) Initialize(ctx context.Context) {
	l := s.logger.With(zap.String("method", "Initialize"))
	l.Debug("Rehydrating session from credential store")

	cred, err := s.creds.Load(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrNoCredential) {
			l.Warn("Credential store read failed, starting unauthenticated", zap.Error(err))
		} else {
			l.Info("No persisted credential, starting unauthenticated")
		}
		s.finishInitialize(ctx, nil, "")
		return
	}

	var user models.User
	if err := json.Unmarshal(cred.UserJSON, &user); err != nil {
		// A corrupt record must behave exactly like no record at all.
		l.Warn("Persisted user record is corrupt, discarding session", zap.Error(err))
		s.finishInitialize(ctx, nil, "")
		return
	}

	s.api.SetToken(cred.Token)
	s.finishInitialize(ctx, &user, cred.Token)

	l.Info("Session rehydrated",
		zap.String("userID", user.ID),
		zap.String("role", string(user.Role)),
	)
	s.logTokenExpiry(l, cred.Token)
}

func (s *StoreImpl) finishInitialize(ctx context.Context, user *models.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.initialized = true
	s.mu.Unlock()

	result := "anonymous"
	if user != nil {
		result = "authenticated"
	}
	s.countOp(ctx, "initialize", result)
}

// logTokenExpiry peeks at the token as an unverified JWT purely for
// diagnostics. The token is opaque to this client; parse failure is ignored.
func (s *StoreImpl) logTokenExpiry(l *zap.Logger, token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	l.Debug("Rehydrated token expiry", zap.Time("expires_at", exp.Time))
}

// Login performs the credential exchange. Exactly one network call; on
// failure the bearer slot, persisted credential, and user stay untouched and
// exactly one error notification fires.
func (s *StoreImpl) Login(ctx context.Context, input LoginInput) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("emailOrPhone", input.EmailOrPhone))
	l.Debug("Attempting sign-in")

	tracer := otel.Tracer("admin-console")
	ctx, span := tracer.Start(ctx, "Session.Login", trace.WithAttributes(
		attribute.String("emailOrPhone", input.EmailOrPhone),
	))
	defer span.End()

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	creds, err := s.api.SignIn(ctx, input.EmailOrPhone, input.Password)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()

		l.Warn("Sign-in failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign-in failed")
		s.notifier.Error(loginFailureMessage(err))
		s.countOp(ctx, "login", "failure")
		return
	}

	s.api.SetToken(creds.Token)

	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		l.Error("Failed to serialize user record", zap.Error(err))
	} else if err := s.creds.Save(ctx, creds.Token, userJSON); err != nil {
		// The in-memory session is still valid; it just won't survive a restart.
		l.Error("Failed to persist credential", zap.Error(err))
	}

	s.mu.Lock()
	s.user = creds.User
	s.token = creds.Token
	s.loading = false
	s.mu.Unlock()

	l.Info("Sign-in successful", zap.String("userID", creds.User.ID), zap.String("role", string(creds.User.Role)))
	span.SetStatus(codes.Ok, "signed in")
	s.countOp(ctx, "login", "success")

	if input.Navigate != nil {
		input.Navigate(s.cfg.LandingPath)
	}
}

// loginFailureMessage prefers the server-provided message when the platform
// sent one, falling back to a generic notice.
func loginFailureMessage(err error) string {
	var apiErr *platform.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Unable to sign in. Please check your credentials and try again."
}

// Logout clears everything the login wrote. It does NOT reset initialized or
// loading.
func (s *StoreImpl) Logout(ctx context.Context, navigate func(path string)) {
	l := s.logger.With(zap.String("method", "Logout"))

	if err := s.creds.Clear(ctx); err != nil {
		l.Warn("Failed to clear persisted credential", zap.Error(err))
	}
	s.api.ClearToken()

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	l.Info("Signed out")
	s.notifier.Success("Signed out successfully")
	s.countOp(ctx, "logout", "success")

	if navigate != nil {
		navigate(s.cfg.SignInPath)
	}
}

// FetchProfile refreshes the account record from the platform.
func (s *StoreImpl) FetchProfile(ctx context.Context, userID string) (*models.User, error) {
	l := s.logger.With(zap.String("method", "FetchProfile"), zap.String("userID", userID))
	l.Debug("Fetching profile")

	tracer := otel.Tracer("admin-console")
	ctx, span := tracer.Start(ctx, "Session.FetchProfile", trace.WithAttributes(
		attribute.String("userID", userID),
	))
	defer span.End()

	s.mu.Lock()
	s.loading = true
	token := s.token
	s.mu.Unlock()

	user, err := s.api.Profile(ctx, userID)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()

		l.Warn("Profile fetch failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile fetch failed")
		s.notifier.Error("Failed to load profile")
		s.countOp(ctx, "fetch_profile", "failure")
		return nil, err
	}

	if userJSON, merr := json.Marshal(user); merr != nil {
		l.Error("Failed to serialize user record", zap.Error(merr))
	} else if serr := s.creds.Save(ctx, token, userJSON); serr != nil {
		l.Error("Failed to re-persist credential", zap.Error(serr))
	}

	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()

	span.SetStatus(codes.Ok, "profile refreshed")
	s.countOp(ctx, "fetch_profile", "success")
	return user, nil
}

// User returns a copy of the signed-in account record, nil when anonymous.
func (s *StoreImpl) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether a login or profile fetch is in flight.
func (s *StoreImpl) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Initialized reports whether the rehydration pass has completed.
func (s *StoreImpl) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *StoreImpl) countOp(ctx context.Context, op, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.SessionOpsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("result", result),
	))
}
