package core

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type (
	ServerConfig struct {
		Host string
		Port int
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	DashboardConfig struct {
		UpcomingLimit      int
		RecentClassesLimit int
	}

	// AuthConfig describes the local account accepted by the identity provider.
	AuthConfig struct {
		UserID       string
		Username     string
		DisplayName  string
		Email        string
		PasswordHash string // bcrypt
	}

	Config struct {
		Env                string // DEV (local; default), TEST, QA, PROD
		Debug              bool
		TestMode           bool
		AppName            string
		Build              string
		SecretKey          string
		JWTExpirationDelta time.Duration
		RollbarToken       string
		Timezone           string
		Store              string
		Server             ServerConfig
		Redis              RedisConfig
		Dashboard          DashboardConfig
		Auth               AuthConfig
	}
)

func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Location returns the configured time zone, falling back to the local one.
func (conf *Config) Location() *time.Location {
	if conf.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "TaskMate")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k3y!n0t-s0-s3cr3t_change+me(taskmate)")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("timezone", "")
	v.SetDefault("store", StoreMemory)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "taskmate")
	v.SetDefault("dashboard.upcomingLimit", 5)
	v.SetDefault("dashboard.recentClassesLimit", 3)
	v.SetDefault("auth.userID", "")
	v.SetDefault("auth.username", "")
	v.SetDefault("auth.displayName", "")
	v.SetDefault("auth.email", "")
	v.SetDefault("auth.passwordHash", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(ProjectRoot(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:                env,
		Debug:              v.GetBool("debug"),
		TestMode:           v.GetBool("testMode"),
		AppName:            v.GetString("appName"),
		Build:              v.GetString("build"),
		SecretKey:          v.GetString("secretKey"),
		JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		RollbarToken:       v.GetString("rollbarToken"),
		Timezone:           v.GetString("timezone"),
		Store:              strings.ToLower(v.GetString("store")),
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
		},
		Dashboard: DashboardConfig{
			UpcomingLimit:      v.GetInt("dashboard.upcomingLimit"),
			RecentClassesLimit: v.GetInt("dashboard.recentClassesLimit"),
		},
		Auth: AuthConfig{
			UserID:       v.GetString("auth.userID"),
			Username:     CleanString(v.GetString("auth.username"), true /* lower */),
			DisplayName:  v.GetString("auth.displayName"),
			Email:        CleanString(v.GetString("auth.email"), true /* lower */),
			PasswordHash: v.GetString("auth.passwordHash"),
		},
	}

	switch conf.Store {
	case StoreMemory, StoreRedis:
	default:
		return nil, errors.Errorf("config: unknown store %q", conf.Store)
	}
	return conf, nil
}
