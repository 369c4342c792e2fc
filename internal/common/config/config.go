package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Supabase      SupabaseConfig          `mapstructure:"supabase"`
	APIs          APIsConfig              `mapstructure:"apis"`
	Assistant     AssistantConfig         `mapstructure:"assistant"`
	Chat          ChatConfig              `mapstructure:"chat"`
	News          NewsConfig              `mapstructure:"news"`
	Security      SecurityConfig          `mapstructure:"security"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	HTTP          HTTPConfig              `mapstructure:"http"`
	Registry      RegistryConfig          `mapstructure:"registry"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
	// Empty disables the news archive.
	NewsIndex string `mapstructure:"news_index"`
}

// GetURL returns the URL field or the first address
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig selects where users and chat history live.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // postgres | supabase
}

const (
	StorageBackendPostgres = "postgres"
	StorageBackendSupabase = "supabase"
)

type SupabaseConfig struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Specific Configuration Sections ---

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	HuggingFace struct {
		BaseURL    string `mapstructure:"base_url"`
		Model      string `mapstructure:"model"`
		Token      string `mapstructure:"token"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"huggingface"`

	TTS struct {
		BaseURL   string `mapstructure:"base_url"`
		Language  string `mapstructure:"language"`
		Timeout   int    `mapstructure:"timeout"` // milliseconds
		ChunkSize int    `mapstructure:"chunk_size"`
	} `mapstructure:"tts"`
}

// AssistantConfig configures the reply engine.
type AssistantConfig struct {
	// Empty uses the catalog compiled into the binary.
	CatalogPath       string `mapstructure:"catalog_path"`
	GenerationTimeout int    `mapstructure:"generation_timeout"` // milliseconds
}

type ChatConfig struct {
	MaxHistory int `mapstructure:"max_history"`
}

type FeedConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type NewsConfig struct {
	Feeds      []FeedConfig `mapstructure:"feeds"`
	MaxPerFeed int          `mapstructure:"max_per_feed"`
	Limit      int          `mapstructure:"limit"`
	Timeout    int          `mapstructure:"timeout"` // milliseconds
	UserAgent  string       `mapstructure:"user_agent"`
	CacheTTL   int          `mapstructure:"cache_ttl"` // seconds
}

// --- Security Configuration ---
type SecurityConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret"`
	SessionTimeout    int    `mapstructure:"session_timeout"` // seconds
	PasswordMinLength int    `mapstructure:"password_min_length"`
	BcryptCost        int    `mapstructure:"bcrypt_cost"`
}

// NotificationConfig holds AWS SES and SNS settings.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	Digest struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"digest"`
}

type HTTPConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
	BodyLimit    int    `mapstructure:"body_limit"`    // bytes
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
