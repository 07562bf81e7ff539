package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
	Swagger bool   `yaml:"swagger"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig with an empty Addr disables Redis; locks fall back to in-process mutexes.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	WorkflowTopic      string   `yaml:"workflow_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
	// ProofKey keys the PIN-proof digests; exactly 32 bytes.
	ProofKey string `yaml:"proof_key"`
}

type WorkflowConfig struct {
	LockTTLSeconds       int `yaml:"lock_ttl_seconds"`
	LockWaitMilliseconds int `yaml:"lock_wait_ms"`
	AircraftCacheSeconds int `yaml:"aircraft_cache_seconds"`

	RequireAllSignatures       bool `yaml:"require_all_signatures"`
	RejectResign               bool `yaml:"reject_resign"`
	AcceptanceRequiresApproval bool `yaml:"acceptance_requires_approval"`
	VerifyPostFlightPilotPIN   bool `yaml:"verify_post_flight_pilot_pin"`
	VerifyFSIPIN               bool `yaml:"verify_fsi_pin"`
	VerifyEngineerPIN          bool `yaml:"verify_engineer_pin"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for keys absent from the file and environment.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{Address: ":8080", Swagger: true},
		GRPC: GRPCConfig{Address: ":9090"},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "flightline",
			Name:    "flightline",
			SSLMode: "disable",
		},
		Kafka: KafkaConfig{
			WorkflowTopic:      "bfs.workflow",
			NotificationsTopic: "bfs.notifications",
			GroupID:            "flightline-worker",
		},
		Auth: AuthConfig{SessionTTLMinutes: 720},
		Workflow: WorkflowConfig{
			LockTTLSeconds:             10,
			LockWaitMilliseconds:       2000,
			AircraftCacheSeconds:       30,
			AcceptanceRequiresApproval: true,
			VerifyPostFlightPilotPIN:   true,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults + environment
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(&cfg, newEnv())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FLIGHTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// applyEnv overlays FLIGHTLINE_<SECTION>_<KEY> variables, e.g. FLIGHTLINE_DATABASE_PASSWORD.
func applyEnv(cfg *Config, v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	flag := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	str("http.address", &cfg.HTTP.Address)
	flag("http.swagger", &cfg.HTTP.Swagger)
	str("grpc.address", &cfg.GRPC.Address)

	str("database.host", &cfg.Database.Host)
	num("database.port", &cfg.Database.Port)
	str("database.user", &cfg.Database.User)
	str("database.password", &cfg.Database.Password)
	str("database.name", &cfg.Database.Name)
	str("database.ssl_mode", &cfg.Database.SSLMode)

	str("redis.addr", &cfg.Redis.Addr)
	str("redis.password", &cfg.Redis.Password)
	num("redis.db", &cfg.Redis.DB)

	if v.IsSet("kafka.brokers") {
		cfg.Kafka.Brokers = splitList(v.GetString("kafka.brokers"))
	}
	str("kafka.workflow_topic", &cfg.Kafka.WorkflowTopic)
	str("kafka.notifications_topic", &cfg.Kafka.NotificationsTopic)
	str("kafka.group_id", &cfg.Kafka.GroupID)

	num("auth.session_ttl_minutes", &cfg.Auth.SessionTTLMinutes)
	str("auth.proof_key", &cfg.Auth.ProofKey)

	num("workflow.lock_ttl_seconds", &cfg.Workflow.LockTTLSeconds)
	num("workflow.lock_wait_ms", &cfg.Workflow.LockWaitMilliseconds)
	num("workflow.aircraft_cache_seconds", &cfg.Workflow.AircraftCacheSeconds)
	flag("workflow.require_all_signatures", &cfg.Workflow.RequireAllSignatures)
	flag("workflow.reject_resign", &cfg.Workflow.RejectResign)
	flag("workflow.acceptance_requires_approval", &cfg.Workflow.AcceptanceRequiresApproval)
	flag("workflow.verify_post_flight_pilot_pin", &cfg.Workflow.VerifyPostFlightPilotPIN)
	flag("workflow.verify_fsi_pin", &cfg.Workflow.VerifyFSIPIN)
	flag("workflow.verify_engineer_pin", &cfg.Workflow.VerifyEngineerPIN)

	str("log.level", &cfg.Log.Level)
	str("log.format", &cfg.Log.Format)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address is required")
	}
	if c.GRPC.Address == "" {
		return errors.New("grpc.address is required")
	}
	if len(c.Auth.ProofKey) != 32 {
		return fmt.Errorf("auth.proof_key must be 32 bytes, got %d", len(c.Auth.ProofKey))
	}
	if c.Auth.SessionTTLMinutes <= 0 {
		return errors.New("auth.session_ttl_minutes must be greater than 0")
	}
	if c.Workflow.LockTTLSeconds <= 0 {
		return errors.New("workflow.lock_ttl_seconds must be greater than 0")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Log.Format)
	}
	return nil
}
