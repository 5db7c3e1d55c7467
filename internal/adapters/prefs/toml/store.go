// Package toml stores local user preferences (theme, language, notification
// and auto-save flags) in the config file. Reading them never involves the
// backend.
package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bnema/intelliscan-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName     = "config"
	configType     = "toml"
	configDir      = ".intelliscan"
	configFile     = "config.toml"
	prefsKeyPrefix = "preferences."

	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

// Known preference keys and their defaults.
var defaults = map[string]string{
	"theme":         "system",
	"language":      "en",
	"notifications": "true",
	"autosave":      "true",
}

var ErrUnknownPreference = errors.New("unknown preference key")

type Store struct {
	configPath string
	mu         sync.RWMutex
}

var _ ports.PreferenceStore = (*Store)(nil)

func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, configDir, configFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetDefault("config.path", defaultPath)
	for key, value := range defaults {
		cfg.SetDefault(prefsKeyPrefix+key, value)
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	path := cfg.GetString("config.path")
	if path == "" {
		path = defaultPath
	}

	return &Store{configPath: filepath.Clean(path)}, nil
}

func (s *Store) Get(key string) (string, error) {
	if _, ok := defaults[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPreference, key)
	}

	all, err := s.All()
	if err != nil {
		return "", err
	}

	return all[key], nil
}

func (s *Store) Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreference, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.readFile()
	if err != nil {
		return err
	}
	if file.Preferences == nil {
		file.Preferences = map[string]string{}
	}
	file.Preferences[key] = value

	return s.writeFile(file)
}

func (s *Store) All() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readFile()
	if err != nil {
		return nil, err
	}

	merged := make(map[string]string, len(defaults))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range file.Preferences {
		if _, ok := defaults[key]; ok {
			merged[key] = value
		}
	}

	return merged, nil
}

// Keys returns the known preference keys in stable order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type fileSchema struct {
	Preferences map[string]string `toml:"preferences"`
}

func (s *Store) readFile() (fileSchema, error) {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read config file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode config file: %w", err)
	}

	return file, nil
}

func (s *Store) writeFile(file fileSchema) error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.configPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
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
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, s.configPath); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	cleanup = false

	return nil
}
