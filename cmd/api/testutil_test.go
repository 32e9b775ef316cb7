package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"elshome/internal/auth"
	"elshome/internal/domain/branches"
	"elshome/internal/domain/roles"
	"elshome/internal/geo"
	"elshome/internal/ratelimiter"
	"elshome/internal/refs"
	"elshome/internal/sessioncache"
	"elshome/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// In-memory fakes. The posts fake reproduces the store's ownership scoping:
// a row the caller may not touch behaves exactly like a missing row.
// ---------------------------------------------------------------------------

type fakeUsers struct {
	mu     sync.Mutex
	users  map[int64]*store.User
	tokens map[int64]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[int64]*store.User), tokens: make(map[int64]string)}
}

func (f *fakeUsers) Create(ctx context.Context, user *store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) SaveRefreshToken(ctx context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[userID] = token
	return nil
}

func (f *fakeUsers) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[userID]
	if !ok {
		return "", store.ErrNotFound
	}
	return token, nil
}

func (f *fakeUsers) DeleteRefreshToken(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[userID] = ""
	return nil
}

type fakePosts struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*store.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: make(map[int64]*store.Post)}
}

func (f *fakePosts) Create(ctx context.Context, post *store.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePosts) GetByID(ctx context.Context, id int64) (*store.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) List(ctx context.Context, limit, offset int) ([]store.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Post
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePosts) ListByAuthor(ctx context.Context, authorID int64) ([]store.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Post
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePosts) Update(ctx context.Context, post *store.Post, authorID int64, isAdmin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.posts[post.ID]
	if !ok || (existing.AuthorID != authorID && !isAdmin) {
		return store.ErrNotFound
	}
	existing.Title = post.Title
	existing.Body = post.Body
	existing.Tags = post.Tags
	existing.UpdatedAt = time.Now()
	return nil
}

func (f *fakePosts) Delete(ctx context.Context, postID, authorID int64, isAdmin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.posts[postID]
	if !ok || (existing.AuthorID != authorID && !isAdmin) {
		return store.ErrNotFound
	}
	delete(f.posts, postID)
	return nil
}

type fakeDocuments struct {
	mu     sync.Mutex
	nextID int64
	docs   map[int64]*store.Document
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[int64]*store.Document)}
}

func (f *fakeDocuments) Create(ctx context.Context, doc *store.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	doc.ID = f.nextID
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDocuments) List(ctx context.Context, includeSecurity bool) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Document
	for _, d := range f.docs {
		if d.Category == store.CategorySecurity && !includeSecurity {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDocuments) GetByID(ctx context.Context, id int64) (*store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, documentID, authorID int64, isAdmin bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[documentID]
	if !ok || (d.AuthorID != authorID && !isAdmin) {
		return "", store.ErrNotFound
	}
	delete(f.docs, documentID)
	return d.FileURL, nil
}

type fakeContacts struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]*store.Contact
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{contacts: make(map[int64]*store.Contact)}
}

func (f *fakeContacts) Create(ctx context.Context, contact *store.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	contact.ID = f.nextID
	cp := *contact
	f.contacts[contact.ID] = &cp
	return nil
}

func (f *fakeContacts) SetReference(ctx context.Context, contactID int64, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[contactID]
	if !ok {
		return store.ErrNotFound
	}
	c.Reference = reference
	return nil
}

func (f *fakeContacts) List(ctx context.Context, limit, offset int) ([]store.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Contact
	for _, c := range f.contacts {
		out = append(out, *c)
	}
	return out, nil
}

type fakeRoles struct {
	mu      sync.Mutex
	records map[int64]roles.Record
	err     error
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{records: make(map[int64]roles.Record)}
}

func (f *fakeRoles) Get(ctx context.Context, userID int64) (roles.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return roles.Record{}, f.err
	}
	rec, ok := f.records[userID]
	if !ok {
		return roles.Visitor(userID), nil
	}
	return rec, nil
}

func (f *fakeRoles) Set(ctx context.Context, rec roles.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.UserID] = rec
	return nil
}

func (f *fakeRoles) ListUsersWithRoles(ctx context.Context) ([]roles.UserWithRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []roles.UserWithRole
	for id, rec := range f.records {
		out = append(out, roles.UserWithRole{UserID: id, Role: rec.Role, CanWrite: rec.CanWrite})
	}
	return out, nil
}

type fakeBranches struct {
	mu       sync.Mutex
	nextID   int64
	branches map[int64]*branches.Branch
}

func newFakeBranches() *fakeBranches {
	return &fakeBranches{branches: make(map[int64]*branches.Branch)}
}

func (f *fakeBranches) Create(ctx context.Context, b *branches.Branch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	cp := *b
	f.branches[b.ID] = &cp
	return nil
}

func (f *fakeBranches) List(ctx context.Context) ([]branches.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []branches.Branch
	for _, b := range f.branches {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBranches) UpdateTags(ctx context.Context, branchID int64, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.branches[branchID]
	if !ok {
		return branches.ErrNotFound
	}
	b.Tags = tags
	return nil
}

type sentMail struct {
	template string
	username string
	email    string
}

type fakeMailer struct {
	sent chan sentMail
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 8)}
}

func (f *fakeMailer) Send(templateFile, username, email string, data any) (int, error) {
	f.sent <- sentMail{template: templateFile, username: username, email: email}
	return 200, nil
}

// ---------------------------------------------------------------------------
// Test application wiring
// ---------------------------------------------------------------------------

type testApp struct {
	*application
	users    *fakeUsers
	posts    *fakePosts
	docs     *fakeDocuments
	contacts *fakeContacts
	roles    *fakeRoles
	branches *fakeBranches
	mail     *fakeMailer
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	users := newFakeUsers()
	posts := newFakePosts()
	docs := newFakeDocuments()
	contacts := newFakeContacts()
	rolesRepo := newFakeRoles()
	branchesRepo := newFakeBranches()
	mail := newFakeMailer()

	sessions, err := sessioncache.New(64, time.Minute)
	require.NoError(t, err)

	refGen, err := refs.NewGenerator("test-salt")
	require.NoError(t, err)

	app := &application{
		config: config{
			env:         "test",
			frontendURL: "http://intranet.test",
			adminEmail:  "admin@example.com",
			auth: authConfig{
				token: tokenConfig{
					secret:          "test-secret",
					refreshSecret:   "test-refresh-secret",
					accessTokenExp:  time.Hour,
					refreshTokenExp: 24 * time.Hour,
					iss:             "elshome",
				},
			},
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		logger: zap.NewNop().Sugar(),
		store: store.Storage{
			Users:     users,
			Posts:     posts,
			Documents: docs,
			Contacts:  contacts,
		},
		roles:         rolesRepo,
		branches:      branchesRepo,
		mailer:        mail,
		geocoder:      geo.NewClient("http://127.0.0.1:1", ""),
		authenticator: auth.NewJWTAuthenticator("test-secret", "test-refresh-secret", "elshome", "elshome", time.Hour, 24*time.Hour),
		sessions:      sessions,
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(1000, time.Second),
		refs:          refGen,
	}

	return &testApp{
		application: app,
		users:       users,
		posts:       posts,
		docs:        docs,
		contacts:    contacts,
		roles:       rolesRepo,
		branches:    branchesRepo,
		mail:        mail,
	}
}

// addUser registers a user with the given role record and returns its id.
func (ta *testApp) addUser(t *testing.T, email string, rec *roles.Record) int64 {
	t.Helper()

	user := &store.User{FirstName: "Test", LastName: "User", Email: email, IsActive: true}
	require.NoError(t, user.Password.Set("password123"))
	require.NoError(t, ta.users.Create(context.Background(), user))

	if rec != nil {
		rec.UserID = user.ID
		require.NoError(t, ta.roles.Set(context.Background(), *rec))
	}

	return user.ID
}

// jsonBody marshals v for use as a request body.
func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// signIn mints a token pair for the user and returns cookies the way a
// browser would hold them after login.
func (ta *testApp) signIn(t *testing.T, userID int64) []*http.Cookie {
	t.Helper()

	user, err := ta.users.GetByID(context.Background(), userID)
	require.NoError(t, err)

	access, refresh, err := ta.authenticator.GenerateTokens(user.ID, user.Email)
	require.NoError(t, err)
	require.NoError(t, ta.users.SaveRefreshToken(context.Background(), user.ID, refresh))

	return []*http.Cookie{
		{Name: accessTokenCookie, Value: access},
		{Name: refreshTokenCookie, Value: refresh},
	}
}
