package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Lobby    LobbyConfig    `mapstructure:"lobby"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress       string        `mapstructure:"http_address"`
	RPCAddress        string        `mapstructure:"rpc_address"`
	MetricsAddress    string        `mapstructure:"metrics_address"`
	// HeartbeatInterval 客户端心跳间隔，两个间隔内没有消息则断开
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// DatabaseConfig selects the match-history store. Driver is "gorm", "postgres" or "" (disabled).
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig 阶段计时相关配置
type GameConfig struct {
	PhaseDuration   time.Duration `mapstructure:"phase_duration"`
	ResolveOnExpiry bool          `mapstructure:"resolve_on_expiry"`
	TimerResolution time.Duration `mapstructure:"timer_resolution"`
}

// LobbyConfig holds the defaults applied when a client omits lobby settings.
type LobbyConfig struct {
	MinPlayers         int `mapstructure:"min_players"`
	MaxPlayers         int `mapstructure:"max_players"`
	JoinTimeoutSeconds int `mapstructure:"join_timeout_seconds"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("server.metrics_address", ":9090")
	v.SetDefault("server.heartbeat_interval", "30s")
	v.SetDefault("database.driver", "")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "mafia")
	v.SetDefault("game.phase_duration", "60s")
	v.SetDefault("game.resolve_on_expiry", false)
	v.SetDefault("game.timer_resolution", "100ms")
	v.SetDefault("lobby.min_players", 1)
	v.SetDefault("lobby.max_players", 12)
	v.SetDefault("lobby.join_timeout_seconds", 0)
	v.SetDefault("log.development", false)
}

// LoadConfig reads config.yaml from path. A missing file is not an error:
// defaults and MAFIA_* environment variables (also read from .env) still apply.
func LoadConfig(path string) (config *Config, err error) {
	if err = godotenv.Load(path + "/.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("mafia")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = v.Unmarshal(&config)
	return
}
