package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	defaultConfigPath = "config/app.yaml"
	envPrefix         = "MDIP_"
)

func Load() (*AppConfig, error) {
	// Assistant API keys usually live in a local .env, same as the platform
	// has always been deployed. Absence is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	cfgPath := resolveConfigPath()
	if st, err := os.Stat(cfgPath); err == nil && !st.IsDir() {
		if err := cleanenv.ReadConfig(cfgPath, cfg); err != nil {
			return nil, err
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	applyEnvAliases(cfg)
	normalizeConfig(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveConfigPath() string {
	if v := getEnv("CONFIG_PATH"); v != "" {
		return strings.TrimSpace(v)
	}
	return defaultConfigPath
}

func applyEnvAliases(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	if v := getEnv("DB_DRIVER"); v != "" {
		cfg.DBDriver = strings.TrimSpace(v)
	}
	if v := getEnv("DB_PATH"); v != "" {
		cfg.DBPath = strings.TrimSpace(v)
	}
	if v := getEnv("DB_URL"); v != "" {
		cfg.DBURL = strings.TrimSpace(v)
	}
	if v := getEnv("ENV", "APP_ENV"); v != "" {
		cfg.AppEnv = strings.TrimSpace(v)
	}
	if v := getEnv("PORT", envPrefix+"PORT"); v != "" {
		cfg.ListenAddr = listenAddrWithPort(cfg.ListenAddr, v)
	}
	if v := getEnv("SESSION_TTL_MIN"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Minute
		}
	}
	if v := getEnv("SEED_DATA_DIR"); v != "" {
		cfg.Seed.DataDir = strings.TrimSpace(v)
	}
	if v := getEnv("ADMIN_PASSWORD"); v != "" {
		cfg.Bootstrap.AdminPassword = strings.TrimSpace(v)
	}
	// Per-domain assistant keys keep their historical names.
	if v := os.Getenv("GEMINI_API_KEY_CYBER"); v != "" {
		cfg.Assistant.CyberKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("GEMINI_API_KEY_DATA"); v != "" {
		cfg.Assistant.DataKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("GEMINI_API_KEY_IT"); v != "" {
		cfg.Assistant.ITKey = strings.TrimSpace(v)
	}
}

func normalizeConfig(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.DBURL = strings.TrimSpace(cfg.DBURL)
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.Seed.DataDir = strings.TrimSpace(cfg.Seed.DataDir)
	cfg.Assistant.BaseURL = strings.TrimSpace(cfg.Assistant.BaseURL)
	cfg.Assistant.Model = strings.TrimSpace(cfg.Assistant.Model)
	cfg.Janitor.Schedule = strings.TrimSpace(cfg.Janitor.Schedule)
	cfg.Bootstrap.AdminUsername = strings.ToLower(strings.TrimSpace(cfg.Bootstrap.AdminUsername))
}

func applyDefaults(cfg *AppConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBPath == "" && cfg.DBURL == "" {
		cfg.DBPath = "mdip.db"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.SLA.UrgentHours <= 0 {
		cfg.SLA.UrgentHours = 4
	}
	if cfg.SLA.HighHours <= 0 {
		cfg.SLA.HighHours = 8
	}
	if cfg.SLA.MediumHours <= 0 {
		cfg.SLA.MediumHours = 24
	}
	if cfg.SLA.LowHours <= 0 {
		cfg.SLA.LowHours = 72
	}
	if cfg.Assistant.BaseURL == "" {
		cfg.Assistant.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Assistant.Model == "" {
		cfg.Assistant.Model = "gemini-1.5-flash"
	}
	if cfg.Assistant.TimeoutSec <= 0 {
		cfg.Assistant.TimeoutSec = 30
	}
	if cfg.Janitor.Schedule == "" {
		cfg.Janitor.Schedule = "@every 15m"
	}
	if cfg.Janitor.AuditRetentionDays <= 0 {
		cfg.Janitor.AuditRetentionDays = 90
	}
	if cfg.Bootstrap.AdminUsername == "" {
		cfg.Bootstrap.AdminUsername = "admin"
	}
}

func listenAddrWithPort(addr, port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return addr
	}
	host := ""
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		host = addr[:i]
	}
	return host + ":" + port
}

func getEnv(names ...string) string {
	for _, n := range names {
		if !strings.HasPrefix(n, envPrefix) {
			n = envPrefix + n
		}
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
