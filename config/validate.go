package config

import (
	"errors"
	"fmt"
	"strings"
)

func Validate(cfg *AppConfig) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	switch cfg.DBDriver {
	case "", "sqlite", "postgres", "pg":
	default:
		return fmt.Errorf("unsupported db driver: %s", cfg.DBDriver)
	}
	if (cfg.DBDriver == "postgres" || cfg.DBDriver == "pg") && cfg.DBURL == "" {
		return errors.New("db_url is required for the postgres driver")
	}
	if cfg.DBDriver == "sqlite" && cfg.DBPath == "" {
		return errors.New("db_path is required for the sqlite driver")
	}
	if !strings.Contains(cfg.ListenAddr, ":") {
		return fmt.Errorf("listen_addr must be host:port, got %q", cfg.ListenAddr)
	}
	if cfg.SLA.UrgentHours > cfg.SLA.HighHours ||
		cfg.SLA.HighHours > cfg.SLA.MediumHours ||
		cfg.SLA.MediumHours > cfg.SLA.LowHours {
		return errors.New("sla thresholds must not decrease from urgent to low")
	}
	return nil
}
