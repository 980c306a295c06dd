package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/yeremiapane/revision-history/revisionable"
)

type DatabaseConfig struct {
	Driver string // sqlite or mysql
	DSN    string
}

type RevisionableConfig struct {
	NullString    string
	UnknownString string
	MorphMap      map[string]string // stored type name -> kind name
}

type Config struct {
	Port         string
	GinMode      string
	LogLevel     string
	JWTSecret    string
	Database     DatabaseConfig
	Auth         revisionable.AuthConfig
	Revisionable RevisionableConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("log_level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "revisions.db")
	v.SetDefault("auth.defaults.guard", "web")
	v.SetDefault("auth.guards.web.provider", "users")
	v.SetDefault("auth.providers.users.model", "User")
	v.SetDefault("revisionable.null_string", "nothing")
	v.SetDefault("revisionable.unknown_string", "unknown")
}

// Load reads config.yaml from dir (if present) and applies environment overrides,
// e.g. DATABASE_DSN for database.dsn and PORT for port.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:      v.GetString("port"),
		GinMode:   v.GetString("gin_mode"),
		LogLevel:  v.GetString("log_level"),
		JWTSecret: v.GetString("jwt_secret"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			DSN:    v.GetString("database.dsn"),
		},
		Auth: authConfig(v),
		Revisionable: RevisionableConfig{
			NullString:    v.GetString("revisionable.null_string"),
			UnknownString: v.GetString("revisionable.unknown_string"),
			MorphMap:      v.GetStringMapString("revisionable.morph_map"),
		},
	}

	if cfg.Revisionable.NullString == "" || cfg.Revisionable.UnknownString == "" {
		return nil, errors.New("revisionable placeholders must not be empty")
	}
	return cfg, nil
}

// authConfig reads the guard layout. viper lowercases map keys, so guard and
// provider names are lowercased wherever they are used as values too:
//
//	auth:
//	  model: ""
//	  defaults: {guard: web}
//	  guards: {web: {provider: users}}
//	  providers: {users: {model: User}}
func authConfig(v *viper.Viper) revisionable.AuthConfig {
	cfg := revisionable.AuthConfig{
		Model:        v.GetString("auth.model"),
		DefaultGuard: strings.ToLower(v.GetString("auth.defaults.guard")),
		Guards:       make(map[string]string),
		Providers:    make(map[string]string),
	}
	for guard := range v.GetStringMap("auth.guards") {
		cfg.Guards[guard] = strings.ToLower(v.GetString("auth.guards." + guard + ".provider"))
	}
	for provider := range v.GetStringMap("auth.providers") {
		cfg.Providers[provider] = v.GetString("auth.providers." + provider + ".model")
	}
	return cfg
}
