// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/blog/internal/i18n"
	"github.com/toeirei/blog/internal/model"
	"github.com/toeirei/blog/internal/security"
	"golang.org/x/term"
)

// readPassword prompts on the terminal. Swapped out by tests.
var readPassword = func(cmd *cobra.Command) (security.Secret, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New(i18n.T("cli.password_required"))
	}
	fmt.Fprint(cmd.ErrOrStderr(), i18n.T("cli.password_prompt"))
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return security.FromBytes(raw), nil
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		email, username, password string
		roles                     []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long: `Creates a user account directly in the database. Use --role ROLE_ADMIN to
create an administrator. Without --password the password is read from the
terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := security.FromString(password)
			if secret.Empty() {
				var err error
				if secret, err = readPassword(cmd); err != nil {
					return err
				}
			}
			defer secret.Zero()

			if secret.RuneLen() < security.MinPasswordLength {
				return model.Violations{{PropertyPath: "password", Message: i18n.T("registration.password_short", security.MinPasswordLength)}}
			}
			hash, err := security.HashPassword(secret)
			if err != nil {
				return err
			}
			u := &model.User{
				Email:    strings.TrimSpace(email),
				Username: strings.TrimSpace(username),
				Roles:    normalizeRoles(roles),
				Password: hash,
			}
			if err := u.Validate().Err(); err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			if err := st.CreateUser(cmd.Context(), u); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.user_created", u.Email, u.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address (login)")
	cmd.Flags().StringVar(&username, "username", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Extra role, e.g. ROLE_ADMIN (repeatable)")
	return cmd
}

// normalizeRoles upper-cases roles and adds the ROLE_ prefix when missing.
func normalizeRoles(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if !strings.HasPrefix(r, "ROLE_") {
			r = "ROLE_" + r
		}
		out = append(out, r)
	}
	return out
}
