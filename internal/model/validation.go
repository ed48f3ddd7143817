// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Violation describes one failed constraint on a property.
type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

// Violations is returned as an error when an entity fails validation.
type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, x.PropertyPath+": "+x.Message)
	}
	return strings.Join(parts, "; ")
}

// Err returns v as an error, or nil when there are no violations.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func notBlank(out Violations, path, value string) Violations {
	if strings.TrimSpace(value) == "" {
		return append(out, Violation{path, "This value should not be blank."})
	}
	return out
}

func length(out Violations, path, value string, min, max int) Violations {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		// blank is reported by notBlank
		return out
	}
	if min > 0 && n < min {
		return append(out, Violation{path, fmt.Sprintf("This value is too short. It should have %d characters or more.", min)})
	}
	if max > 0 && n > max {
		return append(out, Violation{path, fmt.Sprintf("This value is too long. It should have %d characters or less.", max)})
	}
	return out
}

// ValidEmail reports whether s is a bare address (no display name).
func ValidEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return a.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

// Validate checks the category constraints.
func (c Category) Validate() Violations {
	var out Violations
	out = notBlank(out, "name", c.Name)
	out = length(out, "name", c.Name, 2, 255)
	return out
}

// Validate checks the post constraints.
func (p Post) Validate() Violations {
	var out Violations
	out = notBlank(out, "title", p.Title)
	out = length(out, "title", p.Title, 2, 255)
	out = notBlank(out, "content", p.Content)
	out = notBlank(out, "slug", p.Slug)
	out = length(out, "slug", p.Slug, 0, 255)
	if p.CategoryID <= 0 {
		out = append(out, Violation{"category", "This value should not be null."})
	}
	if p.AuthorID <= 0 {
		out = append(out, Violation{"author", "This value should not be null."})
	}
	return out
}

// Validate checks the user constraints. Password is the stored hash, so only
// presence is checked here.
func (u User) Validate() Violations {
	var out Violations
	out = notBlank(out, "email", u.Email)
	if u.Email != "" {
		if !ValidEmail(u.Email) {
			out = append(out, Violation{"email", "This value is not a valid email address."})
		}
		out = length(out, "email", u.Email, 0, 180)
	}
	out = notBlank(out, "username", u.Username)
	out = length(out, "username", u.Username, 0, 255)
	out = notBlank(out, "password", u.Password)
	return out
}
