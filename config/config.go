package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Words    WordsConfig    `mapstructure:"words"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string        `mapstructure:"http_address"`
	RPCAddress     string        `mapstructure:"rpc_address"`
	Port           string        `mapstructure:"port"`
	ClientURL      string        `mapstructure:"client_url"`
	ReadLimitBytes int64         `mapstructure:"read_limit_bytes"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
}

type GameConfig struct {
	MinPlayers   int           `mapstructure:"min_players"`
	MaxPlayers   int           `mapstructure:"max_players"`
	CodeLength   int           `mapstructure:"code_length"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

type WordsConfig struct {
	// Source is one of "builtin", "gorm" or "postgres".
	Source string `mapstructure:"source"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DSN renders the libpq key/value connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.DBName)
}

// Address returns the HTTP listen address. A bare PORT value wins over http_address.
func (s ServerConfig) Address() string {
	if s.Port != "" {
		return ":" + strings.TrimPrefix(s.Port, ":")
	}
	return s.HTTPAddress
}

// AllowedOrigins splits client_url on commas. "*" means any origin.
func (s ServerConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(s.ClientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":3001")
	v.SetDefault("server.rpc_address", ":50051")
	v.SetDefault("server.client_url", "*")
	v.SetDefault("server.read_limit_bytes", 4096)
	v.SetDefault("server.send_buffer", 64)
	v.SetDefault("server.ping_interval", 25*time.Second)

	v.SetDefault("game.min_players", 3)
	v.SetDefault("game.max_players", 8)
	v.SetDefault("game.code_length", 6)
	v.SetDefault("game.reap_interval", 5*time.Minute)
	v.SetDefault("game.rate_limit", 10.0)
	v.SetDefault("game.rate_burst", 20)

	v.SetDefault("words.source", "builtin")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "neonwhisper")

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from path when present and applies environment
// overrides (NEONWHISPER_SERVER_HTTP_ADDRESS, ...). PORT and CLIENT_URL are
// honoured as well for compatibility with the usual hosting setups.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("NEONWHISPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.client_url", "NEONWHISPER_SERVER_CLIENT_URL", "CLIENT_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Address() == "" {
		return errors.New("server.http_address is required")
	}
	if c.Game.MinPlayers < 1 || c.Game.MaxPlayers < c.Game.MinPlayers {
		return fmt.Errorf("invalid player limits: min=%d max=%d", c.Game.MinPlayers, c.Game.MaxPlayers)
	}
	if c.Game.CodeLength < 4 {
		return fmt.Errorf("game.code_length must be at least 4, got %d", c.Game.CodeLength)
	}
	if c.Game.ReapInterval <= 0 {
		return errors.New("game.reap_interval must be positive")
	}
	if c.Game.RateLimit <= 0 || c.Game.RateBurst <= 0 {
		return errors.New("game.rate_limit and game.rate_burst must be positive")
	}
	if c.Server.SendBuffer <= 0 {
		return errors.New("server.send_buffer must be positive")
	}
	switch c.Words.Source {
	case "builtin", "gorm", "postgres":
	default:
		return fmt.Errorf("unknown words.source %q", c.Words.Source)
	}
	return nil
}
