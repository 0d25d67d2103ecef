package config

import (
	"fmt"
	"os"
	"path"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	StoragePg     = "pg"
	StorageMemory = "memory"

	RevalidateRedis = "redis"
	RevalidateNats  = "nats"
	RevalidateLog   = "log"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Storage    string `yaml:"storage" validate:"required,oneof=pg memory"`
	Revalidate string `yaml:"revalidate" validate:"required,oneof=redis nats log"`

	DefaultPageSize  int  `yaml:"default_page_size" validate:"required,gt=0"`
	MaxPageSize      int  `yaml:"max_page_size" validate:"required,gtefield=DefaultPageSize"`
	ReplyDepth       *int `yaml:"reply_depth" validate:"required,min=0,max=10"` // levels of replies populated by fetch-by-id
	ThreadTextMaxLen int  `yaml:"thread_text_max_len" validate:"required,gt=0"`

	WriteRPS   float64 `yaml:"write_rps" validate:"required,gt=0"`   // per-IP refill rate on create/comment routes
	WriteBurst float64 `yaml:"write_burst" validate:"required,gt=0"` // per-IP bucket size

	// users created at startup by in-memory storage, ignored by pg
	SeedUsers []SeedUser `yaml:"seed_users" validate:"dive"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureCookies  bool     `yaml:"secure_cookies"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

type SeedUser struct {
	Id    string `yaml:"id" validate:"required,uuid"`
	Name  string `yaml:"name" validate:"required"`
	Image string `yaml:"image"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type Private struct {
	Pg       Pg     `yaml:"pg"`
	RedisURL string `yaml:"redis_url"`
	NatsURL  string `yaml:"nats_url"`
}

func (c *Config) ReplyDepth() int {
	if c.Public.ReplyDepth == nil {
		return 0
	}
	return *c.Public.ReplyDepth
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err = yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder and panics on any missing or invalid field.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("invalid config: %s", err))
	}
	return cfg
}

func (c *Config) validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return err
	}
	// In-memory storage needs no database credentials
	if c.Public.Storage == StoragePg {
		if err := validate.Struct(c.Private.Pg); err != nil {
			return err
		}
	}
	switch c.Public.Revalidate {
	case RevalidateRedis:
		if c.Private.RedisURL == "" {
			return fmt.Errorf("redis_url is required when revalidate is %q", RevalidateRedis)
		}
	case RevalidateNats:
		if c.Private.NatsURL == "" {
			return fmt.Errorf("nats_url is required when revalidate is %q", RevalidateNats)
		}
	}
	return nil
}
