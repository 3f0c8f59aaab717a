// Package auth stores Odoo connection passwords in the system keyring so
// documents do not have to carry them in plain text.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const (
	// ServiceName is the keyring service name for odootable.
	ServiceName = "odootable"
	// EnvVarName is the environment variable fallback for the password. It
	// applies to every connection, so it is only useful for single-server
	// setups and CI.
	EnvVarName = "ODOO_PASSWORD"
	// KeyringPasswordEnvVarName sets the file keyring passphrase for
	// non-interactive setups.
	KeyringPasswordEnvVarName = "ODOOTABLE_KEYRING_PASSWORD"
	// DBUSSessionAddressEnvVarName is used to detect Linux headless mode.
	DBUSSessionAddressEnvVarName = "DBUS_SESSION_BUS_ADDRESS"
)

// KeyringProvider defines an interface for keyring operations.
type KeyringProvider interface {
	Get(key string) (keyring.Item, error)
	Set(item keyring.Item) error
	Remove(key string) error
}

// osKeyring wraps the actual OS keyring implementation.
type osKeyring struct {
	ring keyring.Keyring
}

func keyringFileDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}

	configDir = strings.TrimSpace(configDir)
	if configDir == "" {
		return string(os.PathSeparator) + filepath.Join(ServiceName, "keyring")
	}
	return filepath.Join(configDir, ServiceName, "keyring")
}

func keyringFilePassword() string {
	if password := strings.TrimSpace(os.Getenv(KeyringPasswordEnvVarName)); password != "" {
		return password
	}
	return ServiceName
}

func shouldForceFileBackend(goos string, dbusAddr string) bool {
	return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

// newOSKeyring creates a new OS keyring provider.
func newOSKeyring() (KeyringProvider, error) {
	cfg := keyring.Config{
		ServiceName: ServiceName,
		// macOS Keychain settings
		KeychainTrustApplication:       true,
		KeychainSynchronizable:         false,
		KeychainAccessibleWhenUnlocked: true,
		// File-based fallback (for environments without GUI keyring)
		FileDir:          keyringFileDir(),
		FilePasswordFunc: func(_ string) (string, error) { return keyringFilePassword(), nil },
	}

	if shouldForceFileBackend(runtime.GOOS, os.Getenv(DBUSSessionAddressEnvVarName)) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &osKeyring{ring: ring}, nil
}

func (k *osKeyring) Get(key string) (keyring.Item, error) {
	return k.ring.Get(key)
}

func (k *osKeyring) Set(item keyring.Item) error {
	return k.ring.Set(item)
}

func (k *osKeyring) Remove(key string) error {
	return k.ring.Remove(key)
}

// defaultProvider is the keyring provider used by the package.
// Can be overridden for testing using SetProviderFunc.
var defaultProvider func() (KeyringProvider, error) = newOSKeyring

// passwordKey identifies one stored credential. Passwords are held per
// connection, keyed by login and server.
func passwordKey(url, login string) string {
	return fmt.Sprintf("odoo-password/%s@%s", login, url)
}

// StorePassword stores the password for the given connection in the
// system keyring.
func StorePassword(url, login, password string) error {
	if url == "" || login == "" {
		return fmt.Errorf("url and login are required")
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	provider, err := defaultProvider()
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}

	err = provider.Set(keyring.Item{
		Key:   passwordKey(url, login),
		Label: fmt.Sprintf("Odoo password for %s@%s", login, url),
		Data:  []byte(password),
	})
	if err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

// GetPassword retrieves the password for the given connection.
// Priority: ODOO_PASSWORD env var, then the keyring.
func GetPassword(url, login string) (string, error) {
	// Check environment variable first; this avoids blocking keychain
	// prompts in CI, tests, and headless environments.
	if password := os.Getenv(EnvVarName); password != "" {
		return password, nil
	}

	provider, err := defaultProvider()
	if err == nil {
		item, err := provider.Get(passwordKey(url, login))
		if err == nil && len(item.Data) > 0 {
			return string(item.Data), nil
		}
	}

	return "", fmt.Errorf("no password for %s@%s in %s environment variable or keyring", login, url, EnvVarName)
}

// HasPassword checks whether a password is available for the connection.
func HasPassword(url, login string) bool {
	_, err := GetPassword(url, login)
	return err == nil
}

// Lookup is GetPassword in the shape the filter expects for resolving
// passwords that are set neither on the block nor globally.
func Lookup(url, login string) (string, bool) {
	password, err := GetPassword(url, login)
	return password, err == nil
}

// DeletePassword removes the password for the given connection from the
// keyring. Does not return an error if no password is stored.
func DeletePassword(url, login string) error {
	provider, err := defaultProvider()
	if err != nil {
		// If we can't open the keyring, there's nothing to delete.
		return nil
	}

	err = provider.Remove(passwordKey(url, login))
	if err != nil && err != keyring.ErrKeyNotFound {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
