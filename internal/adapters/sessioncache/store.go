// Package sessioncache persists the last known identity and session
// credential in a toml file so the next run can render without a backend
// round-trip. It is a cache, not an authority.
package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	sessionFileMode = 0o600
	sessionDirMode  = 0o700
	tempFilePattern = ".session-*.toml.tmp"

	currentSchemaVersion = 1
)

type fileSchema struct {
	Version    int        `toml:"version"`
	User       userSchema `toml:"user"`
	Credential string     `toml:"credential"`
	ExpiresAt  time.Time  `toml:"expires_at"`
}

type userSchema struct {
	UserID   string `toml:"user_id"`
	Email    string `toml:"email"`
	FullName string `toml:"full_name"`
	Avatar   string `toml:"avatar,omitempty"`
}

type Store struct {
	path string
	mu   sync.RWMutex
}

var _ ports.SessionCache = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

func (s *Store) Load(ctx context.Context) (domain.CachedSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.CachedSession{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CachedSession{}, domain.ErrSessionNotFound
		}
		return domain.CachedSession{}, fmt.Errorf("read session file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.CachedSession{}, fmt.Errorf("decode session file: %w", err)
	}
	if file.Version > currentSchemaVersion {
		return domain.CachedSession{}, fmt.Errorf("unsupported session schema version %d (current %d)", file.Version, currentSchemaVersion)
	}

	return domain.CachedSession{
		User: domain.User{
			UserID:   file.User.UserID,
			Email:    file.User.Email,
			FullName: file.User.FullName,
			Avatar:   file.User.Avatar,
		},
		Credential: file.Credential,
		ExpiresAt:  file.ExpiresAt,
	}, nil
}

func (s *Store) Save(ctx context.Context, session domain.CachedSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := fileSchema{
		Version: currentSchemaVersion,
		User: userSchema{
			UserID:   session.User.UserID,
			Email:    session.User.Email,
			FullName: session.User.FullName,
			Avatar:   session.User.Avatar,
		},
		Credential: session.Credential,
		ExpiresAt:  session.ExpiresAt,
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	cleanup = false

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session file: %w", err)
	}

	return nil
}
