package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mcoot/wordparty/internal/factory"
	"github.com/mcoot/wordparty/internal/services/dictionary"
	"github.com/mcoot/wordparty/internal/services/identity"
	redisstore "github.com/mcoot/wordparty/internal/store/redis"
)

// Word list file names looked up inside the --words directory
const (
	answersFile = "answers.txt"
	allowedFile = "allowed.txt"
)

// Config holds CLI configuration
type Config struct {
	Storage      string
	RedisURL     string
	IdentityFile string
	WordsDir     string
	ServerURL    string
	Output       string
	Verbose      bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Storage:      getEnvOrDefault("STORAGE_TYPE", factory.StorageTypeMemory),
		RedisURL:     getEnvOrDefault("REDIS_URL", redisstore.DefaultConfig().URL),
		IdentityFile: getEnvOrDefault("WORDPARTY_IDENTITY_FILE", defaultIdentityFile()),
		WordsDir:     os.Getenv("WORDPARTY_WORDS"),
		ServerURL:    getEnvOrDefault("WORDPARTY_SERVER", "http://localhost:8080"),
		Output:       "text",
		Verbose:      false,
	}
}

// Validate checks flag values that cobra cannot
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q: must be text or json", c.Output)
	}
	switch c.Storage {
	case factory.StorageTypeMemory, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("invalid storage %q: must be memory or redis", c.Storage)
	}
	return nil
}

// NewLogger returns the CLI's logger. Logs go to w and only warnings are
// shown unless verbose is set.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// FactoryConfig builds the application config for the selected storage
func (c *Config) FactoryConfig(logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: c.Storage,
	}
	if c.WordsDir != "" {
		fc.AnswersPath, fc.AllowedPath = c.wordPaths()
	}
	if c.Storage == factory.StorageTypeRedis {
		redisCfg := redisstore.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// LoadDictionary loads the word lists without touching any store
func (c *Config) LoadDictionary() (*dictionary.Service, error) {
	dict := dictionary.New()
	if c.WordsDir == "" {
		return dict, dict.LoadDefaults()
	}
	answers, allowed := c.wordPaths()
	return dict, dict.LoadFromFile(answers, allowed)
}

func (c *Config) wordPaths() (string, string) {
	allowed := filepath.Join(c.WordsDir, allowedFile)
	if _, err := os.Stat(allowed); err != nil {
		allowed = ""
	}
	return filepath.Join(c.WordsDir, answersFile), allowed
}

// LoadCredential reads the saved device credential. A missing file or an
// empty path yields nil, which signs in as a new identity.
func (c *Config) LoadCredential() (*identity.Credential, error) {
	if c.IdentityFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.IdentityFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // No identity file is fine
		}
		return nil, err
	}

	var cred identity.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("reading identity file %s: %w", c.IdentityFile, err)
	}
	if cred.UID == "" || cred.Secret == "" {
		return nil, nil
	}
	return &cred, nil
}

// SaveCredential saves the device credential to the identity file
func (c *Config) SaveCredential(cred identity.Credential) error {
	if c.IdentityFile == "" {
		return nil
	}

	dir := filepath.Dir(c.IdentityFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return os.WriteFile(c.IdentityFile, data, 0600)
}

func defaultIdentityFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wordparty/identity.json"
	}
	return filepath.Join(home, ".wordparty", "identity.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
