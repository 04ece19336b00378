package authService

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"FastGrapher/internal/api/auth"
	authRepository "FastGrapher/internal/api/auth/repository"
	"FastGrapher/internal/entity"
	"FastGrapher/pkg/bcrypt"
	jwtPkg "FastGrapher/pkg/jwt"
	"FastGrapher/pkg/redis"
	"FastGrapher/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu       sync.Mutex
	byID     map[string]entity.User
	verified map[string]time.Time
	deleted  []string
}

func newFakeUsers(users ...entity.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]entity.User{}, verified: map[string]time.Time{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, user entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return auth.ErrEmailAlreadyExists
		}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return entity.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return entity.User{}, auth.ErrUserNotFound
}

func (f *fakeUsers) UpdateProfile(_ context.Context, user entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[user.ID]; !ok {
		return auth.ErrUserNotFound
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id string, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.Password = password
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) MarkVerified(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.VerifiedAt = &at
	f.byID[id] = u
	f.verified[id] = at
	return nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return auth.ErrUserNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRepo struct {
	users *fakeUsers
}

func (r *fakeRepo) NewClient(bool) (authRepository.Client, error) {
	return authRepository.Client{
		Users:    r.users,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeRedis struct {
	mu     sync.Mutex
	tokens map[string]string
	ttl    map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{tokens: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (r *fakeRedis) SetToken(_ context.Context, key string, value string, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[key] = value
	r.ttl[key] = expiration
	return nil
}

func (r *fakeRedis) GetToken(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.tokens[key]
	if !ok {
		return "", redis.ErrTokenNotFound
	}
	return v, nil
}

func (r *fakeRedis) ConsumeToken(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.tokens[key]
	if !ok {
		return "", redis.ErrTokenNotFound
	}
	delete(r.tokens, key)
	return v, nil
}

func (r *fakeRedis) DeleteToken(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, key)
	return nil
}

func (r *fakeRedis) Ping(context.Context) error { return nil }

// keyWithPrefix returns the single stored key starting with prefix.
func (r *fakeRedis) keyWithPrefix(t *testing.T, prefix string) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.tokens {
		if strings.HasPrefix(k, prefix) {
			return k
		}
	}
	t.Fatalf("no token stored with prefix %q", prefix)
	return ""
}

type sentMail struct {
	kind, to, name, link string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendVerification(to string, name string, link string) error {
	m.sent = append(m.sent, sentMail{"verify", to, name, link})
	return m.err
}

func (m *fakeMailer) SendPasswordReset(to string, name string, link string) error {
	m.sent = append(m.sent, sentMail{"reset", to, name, link})
	return m.err
}

type fakeCleaner struct {
	users []string
	err   error
}

func (c *fakeCleaner) RemoveByUser(_ context.Context, userID string) error {
	c.users = append(c.users, userID)
	return c.err
}

type fixture struct {
	svc     AuthService
	users   *fakeUsers
	redis   *fakeRedis
	mailer  *fakeMailer
	cleaner *fakeCleaner
	bcrypt  bcrypt.IBcrypt
}

func newFixture(t *testing.T, users ...entity.User) *fixture {
	t.Helper()
	t.Setenv("FRONTEND_URL", "https://app.example.com/")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		users:   newFakeUsers(users...),
		redis:   newFakeRedis(),
		mailer:  &fakeMailer{},
		cleaner: &fakeCleaner{},
		bcrypt:  bcrypt.NewWithCost(4),
	}
	f.svc = New(logger, &fakeRepo{users: f.users}, f.mailer, f.redis, f.bcrypt, utils.New(), f.cleaner)
	return f
}

func (f *fixture) hash(t *testing.T, password string) string {
	t.Helper()
	h, err := f.bcrypt.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Auth().Register(context.Background(), auth.RegisterRequest{
		Email: " Ana@Example.com ", Password: "secret1", Name: "Ana",
	})
	require.NoError(t, err)
	require.Equal(t, auth.MessageRegistered, res.Message)
	require.NotEmpty(t, res.UserID)

	stored, err := f.users.GetByID(context.Background(), res.UserID)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", stored.Email)
	require.NoError(t, f.bcrypt.ComparePassword(stored.Password, "secret1"))
	require.False(t, stored.IsVerified())

	key := f.redis.keyWithPrefix(t, "auth:verify:")
	require.Equal(t, res.UserID, f.redis.tokens[key])
	require.Equal(t, VerificationTokenTTL, f.redis.ttl[key])

	require.Len(t, f.mailer.sent, 1)
	require.Equal(t, "verify", f.mailer.sent[0].kind)
	require.Equal(t, "https://app.example.com/verify/"+strings.TrimPrefix(key, "auth:verify:"), f.mailer.sent[0].link)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, entity.User{ID: "u1", Email: "ana@example.com"})

	_, err := f.svc.Auth().Register(context.Background(), auth.RegisterRequest{
		Email: "ANA@example.com", Password: "secret1", Name: "Ana",
	})
	require.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	require.Empty(t, f.mailer.sent)
}

func TestRegisterMailFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	res, err := f.svc.Auth().Register(context.Background(), auth.RegisterRequest{
		Email: "bo@example.com", Password: "secret1", Name: "Bo",
	})
	require.NoError(t, err)
	require.Equal(t, auth.MessageRegisteredNoEmail, res.Message)
	require.NotEmpty(t, res.UserID)
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t, entity.User{ID: "u1", Email: "ana@example.com"})
	require.NoError(t, f.redis.SetToken(context.Background(), verificationKey("tok"), "u1", time.Hour))

	res, err := f.svc.Auth().VerifyEmail(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, auth.MessageVerified, res.Message)
	require.Contains(t, f.users.verified, "u1")

	_, err = f.svc.Auth().VerifyEmail(context.Background(), "tok")
	require.ErrorIs(t, err, auth.ErrInvalidVerifyToken)
}

func TestLogin(t *testing.T) {
	t.Setenv(jwtPkg.AccessTokenSecret, "test-secret")
	now := time.Now()

	f := newFixture(t)
	f.users.byID["u1"] = entity.User{ID: "u1", Email: "ana@example.com", Name: "Ana", Password: f.hash(t, "secret1"), IsActive: true, VerifiedAt: &now}
	f.users.byID["u2"] = entity.User{ID: "u2", Email: "bo@example.com", Password: f.hash(t, "secret1"), IsActive: true}
	f.users.byID["u3"] = entity.User{ID: "u3", Email: "cy@example.com", Password: f.hash(t, "secret1"), IsActive: false, VerifiedAt: &now}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "success", email: "ANA@example.com", password: "secret1"},
		{name: "wrong password", email: "ana@example.com", password: "nope", wantErr: auth.ErrInvalidEmailOrPassword},
		{name: "unknown email", email: "who@example.com", password: "secret1", wantErr: auth.ErrInvalidEmailOrPassword},
		{name: "not verified", email: "bo@example.com", password: "secret1", wantErr: auth.ErrEmailNotVerified},
		{name: "inactive", email: "cy@example.com", password: "secret1", wantErr: auth.ErrUserInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.Auth().Login(context.Background(), auth.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, res.Token)
			require.Equal(t, "u1", res.User.ID)
			require.Greater(t, res.ExpiresInMinutes, 0.0)

			token, err := jwtPkg.Parse(res.Token, "test-secret")
			require.NoError(t, err)
			require.True(t, token.Valid)
		})
	}
}

func TestForgotPassword(t *testing.T) {
	f := newFixture(t, entity.User{ID: "u1", Email: "ana@example.com", Name: "Ana"})

	res, err := f.svc.Password().ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.Equal(t, auth.MessageResetSent, res.Message)
	require.Empty(t, f.mailer.sent)

	res, err = f.svc.Password().ForgotPassword(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, auth.MessageResetSent, res.Message)
	require.Len(t, f.mailer.sent, 1)

	key := f.redis.keyWithPrefix(t, "auth:reset:")
	require.Equal(t, ResetTokenTTL, f.redis.ttl[key])
	require.Equal(t, "https://app.example.com/reset-password?token="+strings.TrimPrefix(key, "auth:reset:"), f.mailer.sent[0].link)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t, entity.User{ID: "u1", Email: "ana@example.com", Password: "old"})
	require.NoError(t, f.redis.SetToken(context.Background(), resetKey("tok"), "u1", time.Hour))

	res, err := f.svc.Password().ResetPassword(context.Background(), auth.ResetPasswordRequest{Token: "tok", Password: "newpass"})
	require.NoError(t, err)
	require.Equal(t, auth.MessagePasswordReset, res.Message)
	require.NoError(t, f.bcrypt.ComparePassword(f.users.byID["u1"].Password, "newpass"))

	_, err = f.svc.Password().ResetPassword(context.Background(), auth.ResetPasswordRequest{Token: "tok", Password: "again1"})
	require.ErrorIs(t, err, auth.ErrInvalidResetToken)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t, entity.User{ID: "u1", Email: "ana@example.com", Name: "Ana", Password: "old"})

	_, err := f.svc.User().UpdateUser(context.Background(), "u1", auth.UpdateUserRequest{})
	require.ErrorIs(t, err, auth.ErrNothingToUpdate)

	name := "  Ana Maria "
	avatar := "https://cdn.example.com/a.png"
	password := "newpass"
	res, err := f.svc.User().UpdateUser(context.Background(), "u1", auth.UpdateUserRequest{Name: &name, Avatar: &avatar, Password: &password})
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", res.Name)
	require.Equal(t, avatar, res.Avatar)
	require.NoError(t, f.bcrypt.ComparePassword(f.users.byID["u1"].Password, "newpass"))

	_, err = f.svc.User().UpdateUser(context.Background(), "missing", auth.UpdateUserRequest{Name: &name})
	require.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t, entity.User{ID: "u1", Email: "ana@example.com"})

	require.NoError(t, f.svc.User().DeleteUser(context.Background(), "u1"))
	require.Equal(t, []string{"u1"}, f.cleaner.users)
	require.Equal(t, []string{"u1"}, f.users.deleted)

	require.ErrorIs(t, f.svc.User().DeleteUser(context.Background(), "u1"), auth.ErrUserNotFound)
}

func TestDeleteUserCleanerFailure(t *testing.T) {
	f := newFixture(t, entity.User{ID: "u1", Email: "ana@example.com"})
	f.cleaner.err = errors.New("storage down")

	require.Error(t, f.svc.User().DeleteUser(context.Background(), "u1"))
	require.Empty(t, f.users.deleted)
}
