package config

import "time"

type AppConfig struct {
	DBDriver   string        `yaml:"db_driver" env:"MDIP_DB_DRIVER"`
	DBPath     string        `yaml:"db_path" env:"MDIP_DB_PATH"`
	DBURL      string        `yaml:"db_url" env:"MDIP_DB_URL"`
	ListenAddr string        `yaml:"listen_addr" env:"MDIP_LISTEN_ADDR"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"MDIP_SESSION_TTL"`
	AppEnv     string        `yaml:"app_env" env:"MDIP_APP_ENV"`

	Seed      SeedConfig      `yaml:"seed"`
	SLA       SLAConfig       `yaml:"sla"`
	Assistant AssistantConfig `yaml:"assistant"`
	Janitor   JanitorConfig   `yaml:"janitor"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

type SeedConfig struct {
	DataDir string `yaml:"data_dir" env:"MDIP_SEED_DATA_DIR"`
}

// SLAConfig holds per-priority resolution deadlines in hours.
type SLAConfig struct {
	UrgentHours float64 `yaml:"urgent_hours" env:"MDIP_SLA_URGENT_HOURS"`
	HighHours   float64 `yaml:"high_hours" env:"MDIP_SLA_HIGH_HOURS"`
	MediumHours float64 `yaml:"medium_hours" env:"MDIP_SLA_MEDIUM_HOURS"`
	LowHours    float64 `yaml:"low_hours" env:"MDIP_SLA_LOW_HOURS"`
}

type AssistantConfig struct {
	BaseURL    string `yaml:"base_url" env:"MDIP_ASSISTANT_BASE_URL"`
	Model      string `yaml:"model" env:"MDIP_ASSISTANT_MODEL"`
	TimeoutSec int    `yaml:"timeout_sec" env:"MDIP_ASSISTANT_TIMEOUT_SEC"`
	CyberKey   string `yaml:"cyber_key" env:"GEMINI_API_KEY_CYBER"`
	DataKey    string `yaml:"data_key" env:"GEMINI_API_KEY_DATA"`
	ITKey      string `yaml:"it_key" env:"GEMINI_API_KEY_IT"`
}

type JanitorConfig struct {
	Enabled            bool   `yaml:"enabled" env:"MDIP_JANITOR_ENABLED"`
	Schedule           string `yaml:"schedule" env:"MDIP_JANITOR_SCHEDULE"`
	AuditRetentionDays int    `yaml:"audit_retention_days" env:"MDIP_AUDIT_RETENTION_DAYS"`
}

type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username" env:"MDIP_ADMIN_USERNAME"`
	AdminPassword string `yaml:"admin_password" env:"MDIP_ADMIN_PASSWORD"`
}
