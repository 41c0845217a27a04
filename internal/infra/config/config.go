package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"linkedin-assistant/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Chat      ChatConfig      `yaml:"chat"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Store     StoreConfig     `yaml:"store"`
	Tools     ToolsConfig     `yaml:"tools"`
	Logger    LoggerConfig    `yaml:"logger"`
	Tracer    TracerConfig    `yaml:"tracer"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	RequestsPerMin int    `yaml:"requests_per_min"`
	Burst          int    `yaml:"burst"`
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	Provider       ProviderConfig       `yaml:"provider"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ProviderConfig holds settings for the OpenAI-compatible provider.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

// PoolConfig holds HTTP connection pool settings for the provider client.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// CircuitBreakerConfig holds circuit breaker settings for the provider.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// ChatConfig holds orchestration loop settings.
type ChatConfig struct {
	MaxTurns     int    `yaml:"max_turns"`
	SystemPrompt string `yaml:"system_prompt"`
}

// ExtractorConfig holds settings for the external extraction helper.
type ExtractorConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig holds profile store settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ToolsConfig holds tool system settings.
type ToolsConfig struct {
	ExtractLimit  int           `yaml:"extract_limit"`  // max extractions per window
	ExtractWindow time.Duration `yaml:"extract_window"` // sliding window size
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// defaultSystemPrompt is the developer-role prompt injected when callers do
// not supply their own system message.
const defaultSystemPrompt = `You are a helpful LinkedIn Profile Assistant that helps users extract and convert their LinkedIn profiles.

Your main capabilities:
1. Guide users through providing their LinkedIn credentials safely
2. Help them understand the extraction process
3. Extract and convert profiles to markdown formats
4. Answer questions about the process

When users want to extract a profile, collect these details in order:
1. LinkedIn email/username
2. Password (remind them it's handled securely)
3. Profile URL (must be a valid LinkedIn profile URL)

Important security notes:
- Always handle credentials securely
- Verify the profile URL format
- Inform users about the extraction process
- Let them know their data is handled privately`

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			RequestsPerMin: 100,
			Burst:          20,
		},
		LLM: LLMConfig{
			Provider: ProviderConfig{
				Name:        "openai",
				Model:       "gpt-4o",
				ConnTimeout: 10 * time.Second,
				RespTimeout: 120 * time.Second,
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled: true,
			},
		},
		Chat: ChatConfig{
			MaxTurns:     10,
			SystemPrompt: defaultSystemPrompt,
		},
		Extractor: ExtractorConfig{
			Timeout: 5 * time.Minute,
		},
		Store: StoreConfig{
			Path: "./data/profiles.db",
		},
		Tools: ToolsConfig{
			ExtractLimit:  5,
			ExtractWindow: time.Minute,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads the config file at path (if it exists), applies environment
// overrides, decrypts enc: values and validates the result. An empty path
// loads defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := validatePermissions(path); err != nil {
			return nil, domain.WrapOp("config.Load", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, err.Error())
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, err.Error())
		}
	}

	applyEnvOverrides(cfg)

	if err := decryptSecrets(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies LNKD_* environment variables over the file
// values. Environment always wins.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LNKD_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LNKD_LLM_BASE_URL"); v != "" {
		cfg.LLM.Provider.BaseURL = v
	}
	if v := os.Getenv("LNKD_LLM_API_KEY"); v != "" {
		cfg.LLM.Provider.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.Provider.APIKey == "" {
		cfg.LLM.Provider.APIKey = v
	}
	if v := os.Getenv("LNKD_LLM_MODEL"); v != "" {
		cfg.LLM.Provider.Model = v
	}
	if v := os.Getenv("LNKD_CHAT_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Chat.MaxTurns = n
		}
	}
	if v := os.Getenv("LNKD_EXTRACTOR_URL"); v != "" {
		cfg.Extractor.BaseURL = v
	}
	if v := os.Getenv("LNKD_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("LNKD_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("LNKD_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("LNKD_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// decryptSecrets resolves enc: values using the passphrase from
// LNKD_CONFIG_KEY.
func decryptSecrets(cfg *Config) error {
	secrets := []*string{&cfg.LLM.Provider.APIKey}

	needsKey := false
	for _, s := range secrets {
		if hasEncPrefix(*s) {
			needsKey = true
		}
	}
	if !needsKey {
		return nil
	}

	passphrase := os.Getenv("LNKD_CONFIG_KEY")
	if passphrase == "" {
		return domain.NewDomainError("config.decryptSecrets", domain.ErrDecryption,
			"config contains enc: values but LNKD_CONFIG_KEY is not set")
	}

	for _, s := range secrets {
		if !hasEncPrefix(*s) {
			continue
		}
		plain, err := DecryptValue((*s)[len(encPrefix):], passphrase)
		if err != nil {
			return domain.NewDomainError("config.decryptSecrets", domain.ErrDecryption, err.Error())
		}
		*s = plain
	}
	return nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.LLM.Provider.Model == "" {
		return domain.NewDomainError("config.Validate", domain.ErrConfigLoad, "llm.provider.model is required")
	}
	if c.Chat.MaxTurns <= 0 {
		return domain.NewDomainError("config.Validate", domain.ErrConfigLoad, "chat.max_turns must be > 0")
	}
	if c.Server.Addr == "" {
		return domain.NewDomainError("config.Validate", domain.ErrConfigLoad, "server.addr is required")
	}
	return nil
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable).
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
