package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort     = "5000"
	defaultDatabase = "tripExpo"
	defaultLogLevel = "info"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Mongo struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		Uri      string `yaml:"uri"`
	} `yaml:"mongo"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
		Uri      string `yaml:"uri"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Payment struct {
		Secret string `yaml:"secret"`
	} `yaml:"payment"`
}

// Load reads the YAML file at path, applies environment overrides and
// fills defaults. A missing file is not an error: the service can run on
// environment variables alone.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("open config: %w", err)
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
				return nil, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Mongo.Username, "DB_USER")
	set(&c.Mongo.Password, "DB_PASS")
	set(&c.Mongo.Uri, "MONGO_URI")
	set(&c.Redis.Uri, "REDIS_URI")
	set(&c.Payment.Secret, "PAYMENT_SECRET")
	set(&c.Log.Level, "LOG_LEVEL")
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = defaultDatabase
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// MongoURI returns the configured connection string, or builds one from
// the host and credential fields.
func (c *Config) MongoURI() string {
	if c.Mongo.Uri != "" {
		return c.Mongo.Uri
	}
	host := c.Mongo.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Mongo.Port
	if port == "" {
		port = "27017"
	}
	u := url.URL{Scheme: "mongodb", Host: host + ":" + port}
	if c.Mongo.Username != "" {
		u.User = url.UserPassword(c.Mongo.Username, c.Mongo.Password)
	}
	return u.String()
}

// RedisURI returns the configured Redis URL. An empty result means the
// view queue is disabled.
func (c *Config) RedisURI() string {
	if c.Redis.Uri != "" || c.Redis.Host == "" {
		return c.Redis.Uri
	}
	port := c.Redis.Port
	if port == "" {
		port = "6379"
	}
	db := c.Redis.Database
	if db == "" {
		db = "0"
	}
	u := url.URL{Scheme: "redis", Host: c.Redis.Host + ":" + port, Path: "/" + db}
	if c.Redis.Password != "" {
		u.User = url.UserPassword(c.Redis.Username, c.Redis.Password)
	}
	return u.String()
}
