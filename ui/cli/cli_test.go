// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/toeirei/blog/internal/config"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/model"
	"github.com/toeirei/blog/internal/security"
)

// isolate runs the test in a temp dir with its own config locations and
// returns a sqlite DSN inside it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("BLOG_SECURITY_BCRYPT_COST", "4")

	orig := writeDefaultConfig
	writeDefaultConfig = func(*config.Config) error { return nil }
	t.Cleanup(func() { writeDefaultConfig = orig })

	return "file:" + filepath.Join(dir, "blog.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func runCLI(t *testing.T, dsn string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--database.dsn", dsn}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func openTestStore(t *testing.T, dsn string) db.Store {
	t.Helper()
	st, err := db.NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestMigrateAndFixtures(t *testing.T) {
	dsn := isolate(t)

	out, err := runCLI(t, dsn, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Fatalf("unexpected migrate output: %q", out)
	}

	out, err = runCLI(t, dsn, "fixtures")
	if err != nil {
		t.Fatalf("fixtures failed: %v", err)
	}
	if !strings.Contains(out, "1 users, 3 categories, 1 posts") {
		t.Fatalf("unexpected fixtures output: %q", out)
	}
	out, err = runCLI(t, dsn, "fixtures")
	if err != nil {
		t.Fatalf("second fixtures run failed: %v", err)
	}
	if !strings.Contains(out, "0 users, 0 categories, 0 posts") {
		t.Fatalf("fixtures not idempotent: %q", out)
	}
}

func TestUserCreate(t *testing.T) {
	dsn := isolate(t)

	if _, err := runCLI(t, dsn, "user", "create", "--email", "admin@example.com", "--username", "admin", "--password", "s3cret!", "--role", "admin"); err != nil {
		t.Fatalf("user create failed: %v", err)
	}

	st := openTestStore(t, dsn)
	u, err := st.GetUserByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if !u.HasRole(model.RoleAdmin) {
		t.Fatalf("expected ROLE_ADMIN, got %v", u.Roles)
	}
	if err := security.CheckPassword(u.Password, security.FromString("s3cret!")); err != nil {
		t.Fatalf("stored hash does not match: %v", err)
	}

	_, err = runCLI(t, dsn, "user", "create", "--email", "admin@example.com", "--username", "again", "--password", "s3cret!")
	if !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	_, err = runCLI(t, dsn, "user", "create", "--email", "not-an-email", "--username", "x", "--password", "s3cret!")
	var vs model.Violations
	if !errors.As(err, &vs) || vs[0].PropertyPath != "email" {
		t.Fatalf("expected email violation, got %v", err)
	}
}

func TestUserCreate_PromptsForPassword(t *testing.T) {
	dsn := isolate(t)
	orig := readPassword
	defer func() { readPassword = orig }()
	prompted := false
	readPassword = func(*cobra.Command) (security.Secret, error) {
		prompted = true
		return security.FromString("prompted-pw"), nil
	}

	if _, err := runCLI(t, dsn, "user", "create", "--email", "jane@example.com", "--username", "jane"); err != nil {
		t.Fatalf("user create failed: %v", err)
	}
	if !prompted {
		t.Fatalf("expected the password prompt to be used")
	}

	readPassword = func(*cobra.Command) (security.Secret, error) { return security.FromString("abc"), nil }
	_, err := runCLI(t, dsn, "user", "create", "--email", "joe@example.com", "--username", "joe")
	var vs model.Violations
	if !errors.As(err, &vs) || vs[0].PropertyPath != "password" {
		t.Fatalf("expected password violation, got %v", err)
	}
}

func TestBackupRestoreAndTransfer(t *testing.T) {
	dsn := isolate(t)
	if _, err := runCLI(t, dsn, "fixtures"); err != nil {
		t.Fatalf("fixtures failed: %v", err)
	}

	if _, err := runCLI(t, dsn, "backup", "snapshot.json"); err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	info, err := os.Stat("snapshot.json.zst")
	if err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("backup file mode = %v, want 0600", info.Mode().Perm())
	}

	other := "file:" + filepath.Join(t.TempDir(), "restored.db") + "?_pragma=foreign_keys(1)"
	out, err := runCLI(t, other, "restore", "--full", "snapshot.json.zst")
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out, "1 users, 3 categories, 1 posts") {
		t.Fatalf("unexpected restore output: %q", out)
	}
	restored := openTestStore(t, other)
	if _, err := restored.GetPostBySlug(context.Background(), "my-first-post"); err != nil {
		t.Fatalf("restored post missing: %v", err)
	}

	target := "file:" + filepath.Join(t.TempDir(), "target.db") + "?_pragma=foreign_keys(1)"
	if _, err := runCLI(t, dsn, "transfer", "--to-type", "sqlite", "--to-dsn", target); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	cats, err := openTestStore(t, target).ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories in target, got %d", len(cats))
	}

	if _, err := runCLI(t, dsn, "transfer"); err == nil {
		t.Fatalf("expected transfer without target to fail")
	}
}

func TestDBMaintain(t *testing.T) {
	dsn := isolate(t)
	if _, err := runCLI(t, dsn, "migrate"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	out, err := runCLI(t, dsn, "db-maintain", "--skip-integrity", "--timeout", "30")
	if err != nil {
		t.Fatalf("db-maintain failed: %v", err)
	}
	if !strings.Contains(out, "Maintenance completed successfully.") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dsn := isolate(t)
	_, err := runCLI(t, dsn, "--database.type", "oracle", "migrate")
	if err == nil || !strings.Contains(err.Error(), "unsupported database.type") {
		t.Fatalf("expected config validation error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "version: ") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestNormalizeRoles(t *testing.T) {
	got := normalizeRoles([]string{"admin", " ROLE_EDITOR ", ""})
	want := []string{"ROLE_ADMIN", "ROLE_EDITOR"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("normalizeRoles() = %v, want %v", got, want)
	}
}

func TestServerOptions_SecureCookiesFromConfig(t *testing.T) {
	dsn := isolate(t)

	if _, err := runCLI(t, dsn, "migrate"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if serverOptions(nil, nil, nil).SecureCookies {
		t.Fatalf("secure cookies must be off by default")
	}

	t.Setenv("BLOG_HTTP_SECURE_COOKIES", "true")
	if _, err := runCLI(t, dsn, "migrate"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !serverOptions(nil, nil, nil).SecureCookies {
		t.Fatalf("expected BLOG_HTTP_SECURE_COOKIES to enable secure cookies")
	}
}
