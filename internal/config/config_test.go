package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %s, want :8080", cfg.HTTPAddr)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("KafkaBrokers = %v, want nil", cfg.KafkaBrokers)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %s, want empty", cfg.RedisAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DATABASE_MAX_CONNS", "16")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ENABLE_TRACING", "true")
	t.Setenv("TRACE_SAMPLE_RATE", "0.25")

	cfg := Load()

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %s, want :9090", cfg.HTTPAddr)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.DatabaseConns != 16 {
		t.Errorf("DatabaseConns = %d, want 16", cfg.DatabaseConns)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if !cfg.EnableTracing {
		t.Error("EnableTracing = false, want true")
	}
	if cfg.SampleRate != 0.25 {
		t.Errorf("SampleRate = %v, want 0.25", cfg.SampleRate)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "lots")
	t.Setenv("ENABLE_METRICS", "yep")
	t.Setenv("TRACE_SAMPLE_RATE", "most")
	t.Setenv("LOG_LEVEL", "shouting")

	cfg := Load()

	if cfg.DatabaseConns != 8 {
		t.Errorf("DatabaseConns = %d, want default 8", cfg.DatabaseConns)
	}
	if cfg.EnableMetrics {
		t.Error("EnableMetrics = true, want default false")
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want default 1.0", cfg.SampleRate)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info fallback", cfg.LogLevel)
	}
}
