// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/events"
	"github.com/toeirei/blog/internal/model"
	"github.com/toeirei/blog/internal/security"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store  db.Store
	events *recordingPublisher
	h      http.Handler
}

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	security.SetHashCost(bcrypt.MinCost)
	st, err := db.NewStoreFromDSN("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	pub := &recordingPublisher{}
	o := Options{
		Store:  st,
		Auth:   auth.NewAuthenticator(st, auth.NewDBSessionStore(st), auth.Config{}),
		Events: pub,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return &testEnv{store: st, events: pub, h: NewServer(o).Handler()}
}

type req struct {
	method string
	path   string
	body   any
	token  string
	header map[string]string
}

func (e *testEnv) do(t *testing.T, r req) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	switch b := r.body.(type) {
	case nil:
	case string:
		body.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&body).Encode(b))
	}
	hr := httptest.NewRequest(r.method, r.path, &body)
	hr.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		hr.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.header {
		hr.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, hr)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func (e *testEnv) createUser(t *testing.T, email, password string, roles ...string) *model.User {
	t.Helper()
	hash, err := security.HashPassword(security.FromString(password))
	require.NoError(t, err)
	u := &model.User{Email: email, Username: strings.Split(email, "@")[0], Password: hash, Roles: roles}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, req{method: http.MethodPost, path: "/login", body: map[string]any{"email": email, "password": password}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[sessionView](t, rec).Token
}

func (e *testEnv) createCategory(t *testing.T, token, name string) categoryView {
	t.Helper()
	rec := e.do(t, req{method: http.MethodPost, path: "/categories", body: map[string]any{"name": name}, token: token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[categoryView](t, rec)
}

func TestHomeHealthAndRequestID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, req{method: http.MethodGet, path: "/"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Welcome to the Home Page!"}`, rec.Body.String())
	_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
	assert.NoError(t, err)

	id := uuid.NewString()
	rec = e.do(t, req{method: http.MethodGet, path: "/healthz", header: map[string]string{"X-Request-Id": id}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, rec.Header().Get("X-Request-Id"))

	rec = e.do(t, req{method: http.MethodGet, path: "/", header: map[string]string{"Accept-Language": "fr-FR,fr;q=0.9"}})
	assert.Contains(t, rec.Body.String(), "Bienvenue")

	rec = e.do(t, req{method: http.MethodGet, path: "/nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRegistration(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, req{method: http.MethodPost, path: "/register", body: map[string]any{"plainPassword": "abc"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	p := decodeBody[Problem](t, rec)
	paths := make([]string, 0, len(p.Violations))
	for _, v := range p.Violations {
		paths = append(paths, v.PropertyPath)
	}
	assert.Equal(t, []string{"email", "username", "plainPassword", "agreeTerms"}, paths)
	assert.Equal(t, "Password should be at least 6 characters.", p.Violations[2].Message)

	// six bytes but three characters
	short := map[string]any{"email": "short@example.com", "username": "short", "plainPassword": "ééé", "agreeTerms": true}
	rec = e.do(t, req{method: http.MethodPost, path: "/register", body: short})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	p = decodeBody[Problem](t, rec)
	require.Len(t, p.Violations, 1)
	assert.Equal(t, "plainPassword", p.Violations[0].PropertyPath)

	body := map[string]any{"email": "jane@example.com", "username": "jane", "plainPassword": "secret1", "agreeTerms": true}
	rec = e.do(t, req{method: http.MethodPost, path: "/register", body: body})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sv := decodeBody[sessionView](t, rec)
	assert.Len(t, sv.Token, 64)
	assert.Equal(t, "jane@example.com", sv.User.Email)
	assert.Equal(t, []string{model.RoleUser}, sv.User.Roles)
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "password")

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	rec = e.do(t, req{method: http.MethodGet, path: "/login", header: map[string]string{"Cookie": SessionCookie + "=" + cookie.Value}})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, req{method: http.MethodPost, path: "/register", body: body})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	p = decodeBody[Problem](t, rec)
	require.Len(t, p.Violations, 1)
	assert.Equal(t, model.Violation{PropertyPath: "email", Message: "This email is already registered."}, p.Violations[0])

	assert.Equal(t, []string{"user.registered"}, e.events.types())
}

func TestRegistration_Localized(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, req{
		method: http.MethodPost,
		path:   "/register",
		body:   map[string]any{"email": "a@example.com", "username": "a", "plainPassword": "secret1"},
		header: map[string]string{"Accept-Language": "fr"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	p := decodeBody[Problem](t, rec)
	require.Len(t, p.Violations, 1)
	assert.Equal(t, "Vous devez accepter nos conditions.", p.Violations[0].Message)
}

func TestLoginLogout(t *testing.T) {
	e := newTestEnv(t)
	e.createUser(t, "john@example.com", "password123")

	rec := e.do(t, req{method: http.MethodPost, path: "/login", body: map[string]any{"email": "john@example.com", "password": "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Invalid credentials.", decodeBody[Problem](t, rec).Detail)

	rec = e.do(t, req{method: http.MethodPost, path: "/login", body: `{"email":`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, req{method: http.MethodPost, path: "/login", body: map[string]any{"email": "john@example.com", "password": "password123", "rememberMe": true}})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody[sessionView](t, rec).Token
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Positive(t, cookies[0].MaxAge)

	rec = e.do(t, req{method: http.MethodGet, path: "/login", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "john@example.com", decodeBody[userView](t, rec).Email)

	rec = e.do(t, req{method: http.MethodPost, path: "/logout", token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Negative(t, rec.Result().Cookies()[0].MaxAge)

	rec = e.do(t, req{method: http.MethodGet, path: "/login", token: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_SecureCookies(t *testing.T) {
	for _, secure := range []bool{false, true} {
		e := newTestEnv(t, func(o *Options) { o.SecureCookies = secure })
		e.createUser(t, "john@example.com", "password123")

		rec := e.do(t, req{method: http.MethodPost, path: "/login", body: map[string]any{"email": "john@example.com", "password": "password123"}})
		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, secure, cookies[0].Secure)
	}
}

func TestCategories(t *testing.T) {
	e := newTestEnv(t)
	e.createUser(t, "john@example.com", "password123")
	token := e.login(t, "john@example.com", "password123")

	rec := e.do(t, req{method: http.MethodPost, path: "/categories", body: map[string]any{"name": "Tech"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, req{method: http.MethodPost, path: "/categories", body: map[string]any{"name": "T"}, token: token})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	cat := e.createCategory(t, token, "Tech")
	assert.Equal(t, "Tech", cat.Name)
	assert.Empty(t, cat.Posts)

	path := fmt.Sprintf("/categories/%d", cat.ID)
	rec = e.do(t, req{method: http.MethodGet, path: path})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"Tech","posts":[]}`, cat.ID), rec.Body.String())

	rec = e.do(t, req{method: http.MethodPatch, path: path, body: map[string]any{"name": "Technology"}, token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Technology", decodeBody[categoryView](t, rec).Name)

	rec = e.do(t, req{method: http.MethodPut, path: path, body: map[string]any{}, token: token})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, req{method: http.MethodGet, path: "/categories"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]categoryView](t, rec), 1)

	rec = e.do(t, req{method: http.MethodDelete, path: path, token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, req{method: http.MethodGet, path: path})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{"category.created", "category.updated", "category.deleted"}, e.events.types())
}

func TestPosts(t *testing.T) {
	e := newTestEnv(t)
	john := e.createUser(t, "john@example.com", "password123")
	jane := e.createUser(t, "jane@example.com", "password123")
	token := e.login(t, "john@example.com", "password123")
	tech := e.createCategory(t, token, "Technology")
	health := e.createCategory(t, token, "Health")

	rec := e.do(t, req{method: http.MethodPost, path: "/posts", token: token, body: map[string]any{
		"title":    "My First Post",
		"content":  "Hello world",
		"category": fmt.Sprintf("/categories/%d", tech.ID),
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[postView](t, rec)
	assert.Equal(t, "my-first-post", first.Slug)
	require.NotNil(t, first.Author)
	assert.Equal(t, john.ID, first.Author.ID)
	require.NotNil(t, first.Category)
	assert.Equal(t, "Technology", first.Category.Name)
	assert.Equal(t, fmt.Sprintf("/posts/%d", first.ID), rec.Header().Get("Location"))

	rec = e.do(t, req{method: http.MethodPost, path: "/posts", token: token, body: map[string]any{
		"title": "My First Post", "content": "again", "category": tech.ID,
	}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	p := decodeBody[Problem](t, rec)
	require.Len(t, p.Violations, 1)
	assert.Equal(t, "slug", p.Violations[0].PropertyPath)

	rec = e.do(t, req{method: http.MethodPost, path: "/posts", token: token, body: map[string]any{
		"title": "Orphan", "content": "x", "category": "/categories/999",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, req{method: http.MethodPost, path: "/posts", token: token, body: map[string]any{
		"title": "Orphan", "content": "x", "category": "/users/1",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, req{method: http.MethodPost, path: "/posts", token: token, body: map[string]any{
		"title": "Running tips", "content": "Go slow", "category": strconv.Itoa(health.ID), "author": fmt.Sprintf("/users/%d", jane.ID),
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	second := decodeBody[postView](t, rec)
	assert.Equal(t, jane.ID, second.Author.ID)

	cases := []struct {
		query string
		want  []int
	}{
		{"", []int{first.ID, second.ID}},
		{"?category=" + strconv.Itoa(tech.ID), []int{first.ID}},
		{fmt.Sprintf("?author=/users/%d", jane.ID), []int{second.ID}},
		{"?q=hello", []int{first.ID}},
		{"?q=nothing", []int{}},
	}
	for _, tc := range cases {
		rec = e.do(t, req{method: http.MethodGet, path: "/posts" + tc.query})
		require.Equal(t, http.StatusOK, rec.Code, tc.query)
		ids := []int{}
		for _, pv := range decodeBody[[]postView](t, rec) {
			ids = append(ids, pv.ID)
		}
		assert.Equal(t, tc.want, ids, tc.query)
	}
	rec = e.do(t, req{method: http.MethodGet, path: "/posts?category=abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := fmt.Sprintf("/posts/%d", first.ID)
	rec = e.do(t, req{method: http.MethodPatch, path: path, token: token, body: map[string]any{"title": "Renamed"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeBody[postView](t, rec)
	assert.Equal(t, "Renamed", patched.Title)
	assert.Equal(t, "my-first-post", patched.Slug)
	assert.Equal(t, first.CreatedAt, patched.CreatedAt)

	rec = e.do(t, req{method: http.MethodPut, path: path, token: token, body: map[string]any{"title": "Only title"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, req{method: http.MethodGet, path: fmt.Sprintf("/categories/%d", tech.ID)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[categoryView](t, rec).Posts, 1)

	rec = e.do(t, req{method: http.MethodDelete, path: path})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(t, req{method: http.MethodDelete, path: path, token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, req{method: http.MethodDelete, path: path, token: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, req{method: http.MethodPost, path: "/users", body: map[string]any{
		"email": "john@example.com", "username": "john", "password": "password123", "roles": []string{model.RoleAdmin},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	john := decodeBody[userView](t, rec)
	assert.Equal(t, []string{model.RoleUser}, john.Roles)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = e.do(t, req{method: http.MethodPost, path: "/users", body: map[string]any{
		"email": "john@example.com", "username": "other", "password": "password123",
	}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "There is already an account with this email", decodeBody[Problem](t, rec).Violations[0].Message)

	e.createUser(t, "jane@example.com", "password123")
	e.createUser(t, "admin@example.com", "password123", model.RoleAdmin)
	johnToken := e.login(t, "john@example.com", "password123")
	janeToken := e.login(t, "jane@example.com", "password123")
	adminToken := e.login(t, "admin@example.com", "password123")

	rec = e.do(t, req{method: http.MethodGet, path: "/users"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(t, req{method: http.MethodGet, path: "/users", token: janeToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]userView](t, rec), 3)

	path := fmt.Sprintf("/users/%d", john.ID)
	rec = e.do(t, req{method: http.MethodGet, path: path, token: janeToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, req{method: http.MethodGet, path: path, token: johnToken})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, req{method: http.MethodGet, path: path, token: adminToken})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, req{method: http.MethodPatch, path: path, token: johnToken, body: map[string]any{"username": "johnny", "roles": []string{model.RoleAdmin}}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeBody[userView](t, rec)
	assert.Equal(t, "johnny", patched.Username)
	assert.Equal(t, []string{model.RoleUser}, patched.Roles)

	// patch keeps the password
	e.login(t, "john@example.com", "password123")

	rec = e.do(t, req{method: http.MethodPut, path: path, token: johnToken, body: map[string]any{"email": "john@example.com", "username": "john"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "password", decodeBody[Problem](t, rec).Violations[0].PropertyPath)

	rec = e.do(t, req{method: http.MethodPatch, path: path, token: adminToken, body: map[string]any{"roles": []string{model.RoleAdmin}}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{model.RoleAdmin, model.RoleUser}, decodeBody[userView](t, rec).Roles)

	rec = e.do(t, req{method: http.MethodDelete, path: path, token: janeToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, req{method: http.MethodDelete, path: path, token: johnToken})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, req{method: http.MethodGet, path: "/login", token: johnToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type failingStore struct {
	db.Store
}

func (failingStore) ListCategories(context.Context) ([]model.Category, error) {
	return nil, errors.New("connection reset by peer")
}

func TestInternalErrorsAreMasked(t *testing.T) {
	for _, debug := range []bool{false, true} {
		t.Run(fmt.Sprintf("debug=%v", debug), func(t *testing.T) {
			e := newTestEnv(t, func(o *Options) {
				o.Store = failingStore{Store: o.Store}
				o.Debug = debug
			})
			rec := e.do(t, req{method: http.MethodGet, path: "/categories"})
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			p := decodeBody[Problem](t, rec)
			assert.Contains(t, p.Detail, rec.Header().Get("X-Request-Id"))
			assert.Equal(t, debug, strings.Contains(p.Detail, "connection reset"))
		})
	}
}

func TestParseReference(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{`3`, 3, false},
		{`"3"`, 3, false},
		{`"/categories/3"`, 3, false},
		{`null`, 0, false},
		{``, 0, false},
		{`"/users/3"`, 0, true},
		{`"/categories/x"`, 0, true},
		{`-1`, 0, true},
		{`{}`, 0, true},
	}
	for _, tc := range cases {
		got, err := parseReference(json.RawMessage(tc.raw), "/categories")
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}
