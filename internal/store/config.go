package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode            string `yaml:"mode"`             // DRY_RUN or LIVE
	ExchangeSegment string `yaml:"exchange_segment"` // e.g. NSE_EQ
	ProductType     string `yaml:"product_type"`     // e.g. INTRADAY
	Validity        string `yaml:"validity"`         // e.g. DAY

	Instruments struct {
		CSVPath string `yaml:"csv_path"`
	} `yaml:"instruments"`

	Conversation struct {
		CommandSeconds     int `yaml:"command_seconds"`
		AnswerSeconds      int `yaml:"answer_seconds"`
		MaxResolveAttempts int `yaml:"max_resolve_attempts"`
	} `yaml:"conversation"`

	NLU struct {
		Provider    string  `yaml:"provider"` // GEMINI, OPENAI, or RULES
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"nlu"`

	Speech struct {
		Provider    string `yaml:"provider"` // CLOUD or CONSOLE
		VoiceID     string `yaml:"voice_id"`
		TTSModel    string `yaml:"tts_model"`
		Language    string `yaml:"language"` // STT language code, e.g. en-IN
		SampleRate  int    `yaml:"sample_rate"`
		RecorderCmd string `yaml:"recorder_cmd"` // external capture command
		PlayerCmd   string `yaml:"player_cmd"`   // external playback command
	} `yaml:"speech"`

	Wake struct {
		Mode   string `yaml:"mode"` // CONSOLE or PHRASE
		Phrase string `yaml:"phrase"`
	} `yaml:"wake"`

	News struct {
		Enabled      bool `yaml:"enabled"`
		MaxHeadlines int  `yaml:"max_headlines"`
		TimeoutSecs  int  `yaml:"timeout_seconds"`
	} `yaml:"news"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Instruments.CSVPath == "" {
		return errors.New("instruments.csv_path cannot be empty")
	}
	if c.Conversation.CommandSeconds <= 0 || c.Conversation.AnswerSeconds <= 0 {
		return errors.New("conversation recording durations must be positive")
	}
	switch c.NLU.Provider {
	case "GEMINI", "OPENAI", "RULES":
	default:
		return fmt.Errorf("nlu.provider must be 'GEMINI', 'OPENAI', or 'RULES', got '%s'", c.NLU.Provider)
	}
	if c.Wake.Mode != "CONSOLE" && c.Wake.Mode != "PHRASE" {
		return fmt.Errorf("wake.mode must be 'CONSOLE' or 'PHRASE', got '%s'", c.Wake.Mode)
	}
	return nil
}

// DefaultConfig returns a DRY_RUN configuration with every default applied.
func DefaultConfig() *Config {
	var c Config
	c.Mode = "DRY_RUN"
	c.ExchangeSegment = "NSE_EQ"
	c.ProductType = "INTRADAY"
	c.Validity = "DAY"
	c.Conversation.CommandSeconds = 7
	c.Conversation.AnswerSeconds = 4
	c.Conversation.MaxResolveAttempts = 3
	c.NLU.Provider = "RULES"
	c.NLU.Temperature = 0.1
	c.Speech.Provider = "CONSOLE"
	c.Speech.SampleRate = 16000
	c.Speech.Language = "en-IN"
	c.Wake.Mode = "CONSOLE"
	c.Wake.Phrase = "hey ledger"
	c.News.Enabled = true
	c.News.MaxHeadlines = 5
	c.News.TimeoutSecs = 30
	c.Server.Addr = ":8000"
	return &c
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.ExchangeSegment == "" {
		c.ExchangeSegment = "NSE_EQ"
	}
	if c.ProductType == "" {
		c.ProductType = "INTRADAY"
	}
	if c.Validity == "" {
		c.Validity = "DAY"
	}
	if c.Conversation.CommandSeconds == 0 {
		c.Conversation.CommandSeconds = 7
	}
	if c.Conversation.AnswerSeconds == 0 {
		c.Conversation.AnswerSeconds = 4
	}
	if c.Conversation.MaxResolveAttempts == 0 {
		c.Conversation.MaxResolveAttempts = 3
	}
	if c.Speech.SampleRate == 0 {
		c.Speech.SampleRate = 16000
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "en-IN"
	}
	if c.Wake.Mode == "" {
		c.Wake.Mode = "CONSOLE"
	}
	if c.Wake.Phrase == "" {
		c.Wake.Phrase = "hey ledger"
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 5
	}
	if c.News.TimeoutSecs == 0 {
		c.News.TimeoutSecs = 30
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// Secrets are read from the environment, never from yaml.
type Secrets struct {
	DhanClientID    string
	DhanAccessToken string
	GoogleAPIKey    string
	OpenAIAPIKey    string
	ElevenLabsKey   string
	StartupPIN      string
	ConfirmPIN      string
}

// LoadSecrets pulls secrets from env. Dev-only PIN defaults are refused in
// LIVE mode by ValidateFor.
func LoadSecrets() Secrets {
	return Secrets{
		DhanClientID:    os.Getenv("DHAN_CLIENT_ID"),
		DhanAccessToken: os.Getenv("DHAN_ACCESS_TOKEN"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		ElevenLabsKey:   os.Getenv("ELEVENLABS_API_KEY"),
		StartupPIN:      getEnvOrDefault("LEDGER_STARTUP_PIN", "252604"),
		ConfirmPIN:      getEnvOrDefault("LEDGER_CONFIRM_PIN", "9090"),
	}
}

// ValidateFor checks that the secrets are sufficient for the configured mode.
func (s Secrets) ValidateFor(c *Config) error {
	if c.Mode == "LIVE" {
		if s.DhanClientID == "" || s.DhanAccessToken == "" {
			return errors.New("DHAN_CLIENT_ID and DHAN_ACCESS_TOKEN are required in LIVE mode")
		}
		if s.StartupPIN == "252604" || s.ConfirmPIN == "9090" {
			return errors.New("default PINs are not allowed in LIVE mode; set LEDGER_STARTUP_PIN and LEDGER_CONFIRM_PIN")
		}
	}
	if c.NLU.Provider == "GEMINI" && s.GoogleAPIKey == "" {
		return errors.New("GOOGLE_API_KEY is required for the GEMINI nlu provider")
	}
	if c.NLU.Provider == "OPENAI" && s.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required for the OPENAI nlu provider")
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
