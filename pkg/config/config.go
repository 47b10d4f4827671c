package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Gateway     GatewayConfig     `mapstructure:"gateway"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Router      RouterConfig      `mapstructure:"router"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GatewayConfig points at the unified model gateway's media endpoints.
type GatewayConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	VideoPath string `mapstructure:"video_path"`
	MusicPath string `mapstructure:"music_path"`
}

type InterpreterConfig struct {
	Model               string  `mapstructure:"model"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	MaxRecentMessages   int     `mapstructure:"max_recent_messages"`
	TimeoutSeconds      int     `mapstructure:"timeout_seconds"`
	SummarizerModel     string  `mapstructure:"summarizer_model"`
}

type RouterConfig struct {
	GenerationTimeoutSeconds int      `mapstructure:"generation_timeout_seconds"`
	FallbackChatModel        string   `mapstructure:"fallback_chat_model"`
	VisionModels             []string `mapstructure:"vision_models"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("gateway.video_path", "/v1/video/generations")
	v.SetDefault("gateway.music_path", "/v1/music/generations")
	v.SetDefault("interpreter.model", "gpt-4o-mini")
	v.SetDefault("interpreter.confidence_threshold", 0.6)
	v.SetDefault("interpreter.max_recent_messages", 35)
	v.SetDefault("interpreter.timeout_seconds", 15)
	v.SetDefault("interpreter.summarizer_model", "gpt-4o-mini")
	v.SetDefault("router.generation_timeout_seconds", 180)
	v.SetDefault("router.fallback_chat_model", "gpt-4o-mini")
	v.SetDefault("router.vision_models", []string{"gpt-4o", "gpt-4o-mini"})

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if apiKey := v.GetString("GATEWAY_API_KEY"); apiKey != "" {
		config.Gateway.APIKey = apiKey
	}

	return &config, nil
}
