package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/intelliscan-cli/internal/adapters/api"
	"github.com/bnema/intelliscan-cli/internal/adapters/identity"
	prefstoml "github.com/bnema/intelliscan-cli/internal/adapters/prefs/toml"
	"github.com/bnema/intelliscan-cli/internal/adapters/sessioncache"
	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/logger"
	"github.com/bnema/intelliscan-cli/internal/ports"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configDirName   = ".intelliscan"
	sessionFileName = "session.toml"
)

type app struct {
	api     *api.Client
	session *application.SessionManager
	prefs   ports.PreferenceStore
	now     func() time.Time
}

func wireApp() (*app, error) {
	// Optional .env next to the working directory, mirroring the backend's
	// own configuration style.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	prefs, err := prefstoml.NewStore(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire preference store: %w", err)
	}

	cache := sessioncache.NewStore(filepath.Join(homeDir, configDirName, sessionFileName))

	apiClient := api.NewClient(
		envOrDefault("INTELLISCAN_API_BASE", "http://127.0.0.1:8000/api"),
		&http.Client{Timeout: 5 * time.Minute},
	)

	provider, err := wireIdentityProvider()
	if err != nil {
		return nil, fmt.Errorf("wire identity provider: %w", err)
	}

	session := application.NewSessionManager(apiClient, cache, provider, ports.SystemClock{})
	session.SetOnChange(func(user domain.User, signedIn bool) {
		logger.Debug("session identity changed", "email", user.Email, "signed_in", signedIn)
	})

	return &app{
		api:     apiClient,
		session: session,
		prefs:   prefs,
		now:     time.Now,
	}, nil
}

// wireIdentityProvider builds the social-login flow when a client id is
// configured. Without one, email/password login still works and the google
// subcommand reports the missing configuration.
func wireIdentityProvider() (ports.IdentityProvider, error) {
	clientID := os.Getenv("INTELLISCAN_AUTH_CLIENT_ID")
	if clientID == "" {
		return nil, nil
	}

	return identity.NewProvider(identity.Config{
		Issuer:     envOrDefault("INTELLISCAN_AUTH_ISSUER", "https://accounts.google.com"),
		ClientID:   clientID,
		ListenAddr: envOrDefault("INTELLISCAN_AUTH_LISTEN", "127.0.0.1:1455"),
		Timeout:    5 * time.Minute,
		Prompt: func(authURL string) {
			_, _ = fmt.Fprintf(os.Stderr, "Open this URL to sign in:\n%s\n", authURL)
		},
	}, http.DefaultClient)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
