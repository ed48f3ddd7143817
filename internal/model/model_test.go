// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"strings"
	"testing"
	"time"
)

func TestUserEffectiveRoles_AlwaysHasRoleUser(t *testing.T) {
	u := User{}
	roles := u.EffectiveRoles()
	if len(roles) != 1 || roles[0] != RoleUser {
		t.Fatalf("expected [ROLE_USER], got %v", roles)
	}

	u.Roles = []string{RoleAdmin, RoleUser, RoleAdmin}
	roles = u.EffectiveRoles()
	if len(roles) != 2 || roles[0] != RoleAdmin || roles[1] != RoleUser {
		t.Fatalf("expected [ROLE_ADMIN ROLE_USER], got %v", roles)
	}
	if !u.HasRole(RoleAdmin) || !u.HasRole(RoleUser) {
		t.Fatalf("expected both roles to be granted")
	}
}

func TestUserIdentifierIsEmail(t *testing.T) {
	u := User{Email: "johndoe@example.com", Username: "johndoe"}
	if got := u.UserIdentifier(); got != "johndoe@example.com" {
		t.Fatalf("unexpected identifier %q", got)
	}
}

func TestIRIs(t *testing.T) {
	if got := (User{ID: 3}).IRI(); got != "/users/3" {
		t.Errorf("user IRI: %q", got)
	}
	if got := (Category{ID: 1}).IRI(); got != "/categories/1" {
		t.Errorf("category IRI: %q", got)
	}
	if got := (Post{ID: 7}).IRI(); got != "/posts/7" {
		t.Errorf("post IRI: %q", got)
	}
}

func TestPostTouch(t *testing.T) {
	created := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	p := Post{}
	p.Touch(created, true)
	if !p.CreatedAt.Equal(created) || !p.UpdatedAt.Equal(created) {
		t.Fatalf("create should set both timestamps: %+v", p)
	}

	// an explicit CreatedAt survives create
	explicit := created.Add(-time.Hour)
	q := Post{CreatedAt: explicit}
	q.Touch(created, true)
	if !q.CreatedAt.Equal(explicit) {
		t.Fatalf("explicit CreatedAt overwritten: %v", q.CreatedAt)
	}

	later := created.Add(24 * time.Hour)
	p.Touch(later, false)
	if !p.CreatedAt.Equal(created) {
		t.Fatalf("update must not move CreatedAt")
	}
	if !p.UpdatedAt.Equal(later) {
		t.Fatalf("update must move UpdatedAt, got %v", p.UpdatedAt)
	}
}

func TestCategoryValidate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"valid", "Technology", 0},
		{"blank", "", 1},
		{"spaces only", "   ", 1},
		{"too short", "T", 1},
		{"two runes", "Té", 0},
		{"too long", strings.Repeat("a", 256), 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Category{Name: c.in}.Validate()
			if len(got) != c.want {
				t.Fatalf("expected %d violations, got %v", c.want, got)
			}
		})
	}
}

func TestPostValidate(t *testing.T) {
	p := Post{Title: "My First Post", Content: "body", Slug: "my-first-post", CategoryID: 1, AuthorID: 1}
	if v := p.Validate(); len(v) != 0 {
		t.Fatalf("expected valid post, got %v", v)
	}

	empty := Post{}.Validate()
	paths := map[string]bool{}
	for _, v := range empty {
		paths[v.PropertyPath] = true
	}
	for _, want := range []string{"title", "content", "slug", "category", "author"} {
		if !paths[want] {
			t.Errorf("expected violation on %s, got %v", want, empty)
		}
	}
	if empty.Err() == nil {
		t.Fatalf("expected Err() to be non-nil")
	}
}

func TestUserValidate(t *testing.T) {
	u := User{Email: "johndoe@example.com", Username: "johndoe", Password: "$2a$hash"}
	if v := u.Validate(); v.Err() != nil {
		t.Fatalf("expected valid user, got %v", v)
	}

	bad := User{Email: "not-an-email", Username: "", Password: ""}.Validate()
	if len(bad) != 3 {
		t.Fatalf("expected 3 violations, got %v", bad)
	}
	if !strings.Contains(bad.Error(), "email: This value is not a valid email address.") {
		t.Fatalf("unexpected message: %s", bad.Error())
	}
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"a@example.com", "jane.doe+blog@mail.example.org"} {
		if !ValidEmail(ok) {
			t.Errorf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "plain", "John <john@example.com>", "a@localhost"} {
		if ValidEmail(bad) {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"My First Post":                "my-first-post",
		"  Été à Paris!  ":             "ete-a-paris",
		"Go 1.25 -- what's new?":       "go-1-25-what-s-new",
		"already-a-slug":               "already-a-slug",
		"!!!":                          "",
		"Partially Updated Post Title": "partially-updated-post-title",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
