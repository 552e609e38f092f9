package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-backend/internal/auth"
	"admin-backend/internal/directory"
	"admin-backend/internal/policy"
	"admin-backend/internal/session"
)

// fakeStore records calls so tests can assert which resolution path ran.
type fakeStore struct {
	mu          sync.Mutex
	recs        map[string]session.Record
	unavailable bool
	getCalls    []string
	delCalls    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: make(map[string]session.Record)}
}

func (f *fakeStore) Create(ctx context.Context, rec session.Record) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unavailable {
		return "", session.ErrStoreUnavailable
	}
	id, err := session.NewID()
	if err != nil {
		return "", err
	}
	rec.SessionID = id
	f.recs[id] = rec
	return id, nil
}

func (f *fakeStore) Get(ctx context.Context, sessionID string) (*session.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, sessionID)
	if f.unavailable {
		return nil, session.ErrStoreUnavailable
	}
	rec, ok := f.recs[sessionID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeStore) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delCalls = append(f.delCalls, sessionID)
	if f.unavailable {
		return session.ErrStoreUnavailable
	}
	delete(f.recs, sessionID)
	return nil
}

type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]directory.User
	err   error
}

func newFakeDirectory(users ...directory.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]directory.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (f *fakeDirectory) FindByID(ctx context.Context, userID string) (*directory.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeDirectory) FindOrCreate(ctx context.Context, _ *auth.Identity) (*directory.User, error) {
	return nil, errors.New("not used in resolution tests")
}

func (f *fakeDirectory) setEmail(userID, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[userID]
	u.Email = email
	f.users[userID] = u
}

func (f *fakeDirectory) remove(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
}

const (
	testUserID = "user-1"
	testEmail  = "admin@example.com"
)

func newTestService(store session.Store, dir directory.Directory, pol policy.Policy) *session.Service {
	return session.NewService(store, dir, pol, 7*24*time.Hour, time.Second)
}

func defaultSetup() (*fakeStore, *fakeDirectory, *policy.StaticPolicy, *session.Service) {
	store := newFakeStore()
	dir := newFakeDirectory(directory.User{ID: testUserID, Email: testEmail, DisplayName: "Admin"})
	pol := policy.NewStaticPolicy()
	return store, dir, pol, newTestService(store, dir, pol)
}

func start(t *testing.T, svc *session.Service, rawTags string) *session.Started {
	t.Helper()
	params := session.StartParams{
		UserID:      testUserID,
		Subject:     "idp|12345",
		Email:       testEmail,
		DisplayName: "Admin",
	}
	if rawTags != "" {
		params.RawTags = json.RawMessage(rawTags)
	}
	started, err := svc.Start(context.Background(), params)
	require.NoError(t, err)
	return started
}

func requestWithCookie(name, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(&http.Cookie{Name: name, Value: value})
	return r
}

func TestService_Resolve_NoCredential(t *testing.T) {
	_, _, _, svc := defaultSetup()

	ident, err := svc.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestService_Resolve_StoreReference(t *testing.T) {
	store, _, _, svc := defaultSetup()
	started := start(t, svc, `["admin"]`)
	require.NotEmpty(t, started.SessionID)

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.IDCookieName, started.SessionID))
	require.NoError(t, err)
	require.NotNil(t, ident)

	assert.Equal(t, testUserID, ident.ID)
	assert.Equal(t, "idp|12345", ident.Subject)
	assert.Equal(t, testEmail, ident.Email)
	assert.Equal(t, []string{"admin"}, ident.Tags)
	assert.False(t, ident.IsElevated)
	assert.Equal(t, []string{started.SessionID}, store.getCalls)
}

func TestService_Resolve_SelfContainedToken(t *testing.T) {
	store, _, _, svc := defaultSetup()
	started := start(t, svc, `["admin"]`)

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	require.NotNil(t, ident)

	assert.Equal(t, testUserID, ident.ID)
	assert.Equal(t, []string{"admin"}, ident.Tags)
	// A non-id-shaped candidate must never reach the store.
	assert.Empty(t, store.getCalls)
}

func TestService_Resolve_ExpiredStoreRecord(t *testing.T) {
	store, dir, pol, _ := defaultSetup()

	// A service with a negative TTL issues already-expired sessions; the
	// fake store hands them back raw, so the expiry check is the service's.
	expiredSvc := session.NewService(store, dir, pol, -time.Minute, time.Second)
	started, err := expiredSvc.Start(context.Background(), session.StartParams{
		UserID:  testUserID,
		Subject: "idp|12345",
		Email:   testEmail,
	})
	require.NoError(t, err)

	svc := newTestService(store, dir, pol)

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.IDCookieName, started.SessionID))
	require.NoError(t, err)
	assert.Nil(t, ident, "expired store-referenced session must resolve to absent")

	ident, err = svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	assert.Nil(t, ident, "expired self-contained token must resolve to absent")
}

func TestService_Resolve_StoreUnavailable(t *testing.T) {
	store, _, _, svc := defaultSetup()
	started := start(t, svc, "")
	store.unavailable = true

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.IDCookieName, started.SessionID))
	require.NoError(t, err, "unavailability must degrade, never raise")
	assert.Nil(t, ident)
	// The id-shaped candidate went to the store exactly once and was not
	// reinterpreted as a token afterwards.
	assert.Equal(t, []string{started.SessionID}, store.getCalls)
}

func TestService_Resolve_TokenWorksWhileStoreUnavailable(t *testing.T) {
	store, _, _, svc := defaultSetup()
	started := start(t, svc, `["admin"]`)
	store.unavailable = true

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	require.NotNil(t, ident, "self-contained path must not depend on the store")
	assert.Equal(t, testUserID, ident.ID)
}

func TestService_Resolve_MalformedToken(t *testing.T) {
	_, _, _, svc := defaultSetup()

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, "@@@not-a-token@@@"))
	require.NoError(t, err, "malformed token is not-logged-in, not an error")
	assert.Nil(t, ident)
}

func TestService_Resolve_DeletedUser(t *testing.T) {
	_, dir, _, svc := defaultSetup()
	started := start(t, svc, "")

	dir.remove(testUserID)

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	assert.Nil(t, ident, "session must die with the account it references")
}

func TestService_Resolve_DirectoryFailure(t *testing.T) {
	_, dir, _, svc := defaultSetup()
	started := start(t, svc, "")

	dir.err = errors.New("directory timeout")

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err, "backend failures must not surface to the caller")
	assert.Nil(t, ident)
}

func TestService_Resolve_ElevationTracksCurrentPolicy(t *testing.T) {
	_, _, pol, svc := defaultSetup()
	started := start(t, svc, `["admin"]`)
	req := func() *http.Request { return requestWithCookie(session.TokenCookieName, started.Token) }

	ident, err := svc.Resolve(context.Background(), req())
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.False(t, ident.IsElevated)

	// Policy change applies to existing sessions without re-login.
	pol.Set(testEmail)

	ident, err = svc.Resolve(context.Background(), req())
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.True(t, ident.IsElevated)

	pol.Set()

	ident, err = svc.Resolve(context.Background(), req())
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.False(t, ident.IsElevated)
}

func TestService_Resolve_ElevationKeyedOnCurrentEmail(t *testing.T) {
	_, dir, pol, svc := defaultSetup()
	started := start(t, svc, "")

	// The session cached the old email; privilege granted to it must not
	// survive the directory-side change.
	pol.Set(testEmail)
	dir.setEmail(testUserID, "renamed@example.com")

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.False(t, ident.IsElevated)

	pol.Set("renamed@example.com")

	ident, err = svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.True(t, ident.IsElevated)
}

func TestService_Require(t *testing.T) {
	_, _, _, svc := defaultSetup()
	started := start(t, svc, "")

	ident, err := svc.Require(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	assert.NotNil(t, ident)

	_, err = svc.Require(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrUnauthorized)
}

func TestService_Start_IssuesBothHalves(t *testing.T) {
	_, _, _, svc := defaultSetup()
	started := start(t, svc, `["admin"]`)

	assert.True(t, session.IsStoreID(started.SessionID))
	assert.NotEmpty(t, started.Token)
	assert.False(t, session.IsStoreID(started.Token))
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), started.ExpiresAt, time.Second)

	// Repeated exchanges create independent records.
	again := start(t, svc, `["admin"]`)
	assert.NotEqual(t, started.SessionID, again.SessionID)
}

func TestService_Start_StoreUnavailable(t *testing.T) {
	store, _, _, svc := defaultSetup()
	store.unavailable = true

	started := start(t, svc, "")
	assert.Empty(t, started.SessionID, "store half is best-effort")
	assert.NotEmpty(t, started.Token)

	store.unavailable = false
	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	assert.NotNil(t, ident)
}

func TestService_Destroy_StoreReference(t *testing.T) {
	_, _, _, svc := defaultSetup()
	started := start(t, svc, "")

	svc.Destroy(context.Background(), started.SessionID)

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.IDCookieName, started.SessionID))
	require.NoError(t, err)
	assert.Nil(t, ident, "destroyed store session must be absent")

	// The paired token is independent and stays valid until expiry.
	ident, err = svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	assert.NotNil(t, ident)
}

func TestService_Destroy_TokenIsNoop(t *testing.T) {
	store, _, _, svc := defaultSetup()
	started := start(t, svc, "")

	svc.Destroy(context.Background(), started.Token)
	assert.Empty(t, store.delCalls, "token-shaped candidates have nothing to delete server-side")
}

func TestService_UnavailableStoreBackend(t *testing.T) {
	dir := newFakeDirectory(directory.User{ID: testUserID, Email: testEmail})
	svc := newTestService(session.UnavailableStore{}, dir, policy.NewStaticPolicy())

	started, err := svc.Start(context.Background(), session.StartParams{
		UserID:  testUserID,
		Subject: "idp|12345",
		Email:   testEmail,
	})
	require.NoError(t, err)
	assert.Empty(t, started.SessionID)

	ident, err := svc.Resolve(context.Background(), requestWithCookie(session.TokenCookieName, started.Token))
	require.NoError(t, err)
	assert.NotNil(t, ident)
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"absent", "", nil},
		{"native array", `["admin","editor"]`, []string{"admin", "editor"}},
		{"empty array", `[]`, []string{}},
		{"json-encoded array string", `"[\"admin\",\"editor\"]"`, []string{"admin", "editor"}},
		{"bare string", `"editor"`, []string{"editor"}},
		{"empty string", `""`, nil},
		{"null", `null`, nil},
		{"number", `42`, nil},
		{"object", `{"role":"admin"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.raw != "" {
				raw = json.RawMessage(tt.raw)
			}
			assert.Equal(t, tt.want, session.NormalizeTags(raw))
		})
	}
}
