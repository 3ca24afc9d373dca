// Package accounts handles signup, login, and account deletion. Usernames
// and profile data live in the profile store; passwords are bcrypt-hashed
// and kept in the secret store, never alongside the profile.
package accounts

import (
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/lumen-gallery/lumen/internal/domain"
)

// passwordKey namespaces per-account password hashes in the secret store.
func passwordKey(username string) string {
	return "password:" + username
}

// Manager coordinates the profile store and secret store for account
// operations.
type Manager struct {
	profiles domain.ProfileStore
	secrets  domain.SecretStore
	logger   *slog.Logger
}

// NewManager creates an account manager.
func NewManager(profiles domain.ProfileStore, secrets domain.SecretStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{profiles: profiles, secrets: secrets, logger: logger}
}

// SignUp registers a new account with a hashed password.
func (m *Manager) SignUp(username, email, password string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := m.profiles.CreateUser(username, email)
	if err != nil {
		return domain.User{}, err
	}

	if !m.secrets.Save(passwordKey(username), string(hash)) {
		// Roll the account back so a half-created user can't exist with no
		// password.
		if delErr := m.profiles.DeleteUser(username); delErr != nil {
			m.logger.Error("failed to roll back user after password save failure",
				"username", username, "error", delErr)
		}
		return domain.User{}, fmt.Errorf("failed to store password for %s", username)
	}

	m.logger.Info("account created", "username", username)
	return user, nil
}

// Login checks password against the stored hash and returns the account.
func (m *Manager) Login(username, password string) (domain.User, error) {
	user, found := m.profiles.GetUser(username)
	if !found {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	hash, ok := m.secrets.Get(passwordKey(username))
	if !ok {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword replaces the stored hash after verifying the old password.
func (m *Manager) ChangePassword(username, oldPassword, newPassword string) error {
	if _, err := m.Login(username, oldPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if !m.secrets.Update(passwordKey(username), string(hash)) {
		return fmt.Errorf("failed to update password for %s", username)
	}
	return nil
}

// Delete removes the account, its password, and everything the profile
// store cascades.
func (m *Manager) Delete(username string) error {
	if err := m.profiles.DeleteUser(username); err != nil {
		return err
	}
	m.secrets.Delete(passwordKey(username))
	m.logger.Info("account deleted", "username", username)
	return nil
}

// Exists reports whether an account with username is registered.
func (m *Manager) Exists(username string) bool {
	_, found := m.profiles.GetUser(username)
	return found
}
