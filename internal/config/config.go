package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "REGULATOR_SCANNER_CONFIG"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	openAIModelEnv   = "OPENAI_MODEL"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	auditDBPathEnv   = "AUDIT_DB_PATH"
)

// Duration wraps time.Duration so YAML values like "4.5s" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds everything the pipeline needs for one run.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
	Sources  []SourceConfig `yaml:"sources"`
	Outputs  OutputConfig   `yaml:"outputs"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Audit    AuditConfig    `yaml:"audit"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig parameterizes all outbound page and feed fetches.
type HTTPConfig struct {
	Timeout         Duration `yaml:"timeout"`
	UserAgent       string   `yaml:"userAgent"`
	RetryAttempts   int      `yaml:"retryAttempts"`
	RetryBackoff    Duration `yaml:"retryBackoff"`
	PolitenessDelay Duration `yaml:"politenessDelay"`
	PageLoadTimeout Duration `yaml:"pageLoadTimeout"`
}

// SourceConfig describes one regulator listing and how to retrieve it.
type SourceConfig struct {
	Name          string   `yaml:"name"`
	URL           string   `yaml:"url"`
	Mode          string   `yaml:"mode"` // feed | page | rendered
	Limit         int      `yaml:"limit"`
	ItemSelectors []string `yaml:"itemSelectors"`
	WaitSelector  string   `yaml:"waitSelector"`
}

// OutputConfig names the artifacts rewritten on every run.
type OutputConfig struct {
	HTMLPath   string `yaml:"htmlPath"`
	XMLPath    string `yaml:"xmlPath"`
	CorpusPath string `yaml:"corpusPath"`
}

// OpenAIConfig defines how to contact the enrichment API. An empty APIKey
// disables enrichment without disabling the pipeline.
type OpenAIConfig struct {
	Endpoint       string   `yaml:"endpoint"`
	Model          string   `yaml:"model"`
	APIKey         string   `yaml:"apiKey"`
	RateLimitDelay Duration `yaml:"rateLimitDelay"`
	MaxPromptChars int      `yaml:"maxPromptChars"`
}

// AuditConfig points at the optional processed-articles database.
type AuditConfig struct {
	DBPath string `yaml:"dbPath"`
}

// TelegramConfig wires the optional new-article digest.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of compiled defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Limit <= 0 {
			cfg.Sources[i].Limit = defaultPerSourceLimit
		}
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(auditDBPathEnv); v != "" {
		c.Audit.DBPath = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.HTTP.Timeout != 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}
	if override.HTTP.RetryAttempts != 0 {
		base.HTTP.RetryAttempts = override.HTTP.RetryAttempts
	}
	if override.HTTP.RetryBackoff != 0 {
		base.HTTP.RetryBackoff = override.HTTP.RetryBackoff
	}
	if override.HTTP.PolitenessDelay != 0 {
		base.HTTP.PolitenessDelay = override.HTTP.PolitenessDelay
	}
	if override.HTTP.PageLoadTimeout != 0 {
		base.HTTP.PageLoadTimeout = override.HTTP.PageLoadTimeout
	}

	if override.Outputs.HTMLPath != "" {
		base.Outputs.HTMLPath = override.Outputs.HTMLPath
	}
	if override.Outputs.XMLPath != "" {
		base.Outputs.XMLPath = override.Outputs.XMLPath
	}
	if override.Outputs.CorpusPath != "" {
		base.Outputs.CorpusPath = override.Outputs.CorpusPath
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.RateLimitDelay != 0 {
		base.OpenAI.RateLimitDelay = override.OpenAI.RateLimitDelay
	}
	if override.OpenAI.MaxPromptChars != 0 {
		base.OpenAI.MaxPromptChars = override.OpenAI.MaxPromptChars
	}

	if override.Audit.DBPath != "" {
		base.Audit.DBPath = override.Audit.DBPath
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

const defaultPerSourceLimit = 10

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		HTTP: HTTPConfig{
			Timeout:         Duration(30 * time.Second),
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			RetryAttempts:   3,
			RetryBackoff:    Duration(5 * time.Second),
			PolitenessDelay: Duration(500 * time.Millisecond),
			PageLoadTimeout: Duration(45 * time.Second),
		},
		Outputs: OutputConfig{
			HTMLPath:   "index.html",
			XMLPath:    "feed-data.xml",
			CorpusPath: "articles.json",
		},
		OpenAI: OpenAIConfig{
			Endpoint:       "https://api.openai.com/v1/chat/completions",
			Model:          "gpt-4o-mini",
			APIKey:         "",
			RateLimitDelay: Duration(4500 * time.Millisecond),
			MaxPromptChars: 6000,
		},
		Sources: []SourceConfig{
			{
				Name:  "ACCC News",
				URL:   "https://www.accc.gov.au/rss/news_centre.xml",
				Mode:  "feed",
				Limit: defaultPerSourceLimit,
			},
			{
				Name:  "AUSTRAC Media Releases",
				URL:   "https://www.austrac.gov.au/media-release/rss.xml",
				Mode:  "feed",
				Limit: defaultPerSourceLimit,
			},
			{
				Name:  "ASIC Media Releases",
				URL:   "https://rss.app/feeds/rMlPOR4nHXy72VfZ.xml",
				Mode:  "feed",
				Limit: defaultPerSourceLimit,
			},
			{
				Name:  "APRA News",
				URL:   "https://www.apra.gov.au/news-and-publications",
				Mode:  "page",
				Limit: defaultPerSourceLimit,
				ItemSelectors: []string{
					".view-content .views-row",
					"article, .node, .item, .news-item",
					`.views-row, [class*="news"], [class*="publication"]`,
				},
			},
			{
				Name:         "RBA Media Releases",
				URL:          "https://www.rba.gov.au/media-releases/",
				Mode:         "rendered",
				Limit:        defaultPerSourceLimit,
				WaitSelector: "#content ul.list-articles",
			},
		},
	}
}
