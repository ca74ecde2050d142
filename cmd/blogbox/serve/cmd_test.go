package serve

import (
	"testing"

	"github.com/andrebq/blogbox/internal/config"
)

func TestMergeFlags(t *testing.T) {
	bind := "0.0.0.0:9000"
	database := "/var/lib/blogbox/blog.db"
	level := "debug"
	invalidLevel := "loud"

	cfg, err := mergeFlags(config.Default(), flagValues{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg != config.Default() {
		t.Fatalf("no flags should keep the config as is, got %#v", cfg)
	}

	cfg, err = mergeFlags(config.Default(), flagValues{Bind: &bind, Database: &database, LogLevel: &level})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bind != bind || cfg.Database != database || cfg.LogLevel != level {
		t.Fatalf("flags should replace config values, got %#v", cfg)
	}

	cfg, err = mergeFlags(config.Default(), flagValues{Port: 8080})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bind != "localhost:8080" {
		t.Fatalf("port should keep the host of the bind address, got %v", cfg.Bind)
	}

	cfg, err = mergeFlags(config.Default(), flagValues{Bind: &bind, Port: 8080})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bind != "0.0.0.0:8080" {
		t.Fatalf("port should apply after the bind flag, got %v", cfg.Bind)
	}

	noPort := "localhost"
	if _, err = mergeFlags(config.Default(), flagValues{Bind: &noPort, Port: 8080}); err == nil {
		t.Fatal("bind without a port cannot take a port override")
	}
	if _, err = mergeFlags(config.Default(), flagValues{LogLevel: &invalidLevel}); err == nil {
		t.Fatal("invalid log level should fail validation")
	}
}
