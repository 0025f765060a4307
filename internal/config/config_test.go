package config

import (
	"errors"
	"testing"
)

func TestGetIntBool(t *testing.T) {
	t.Setenv("X_INT", "42")
	if v := getInt("X_INT", 1); v != 42 {
		t.Fatalf("want 42, got %d", v)
	}
	t.Setenv("X_INT_BAD", "forty")
	if v := getInt("X_INT_BAD", 7); v != 7 {
		t.Fatalf("want default 7, got %d", v)
	}

	t.Setenv("X_BOOL_T", "true")
	t.Setenv("X_BOOL_F", "false")
	if !getBool("X_BOOL_T", false) {
		t.Fatalf("want true")
	}
	if getBool("X_BOOL_F", true) {
		t.Fatalf("want false")
	}
}

func TestFromEnv_SQLiteDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_MAX_OPEN", "")
	t.Setenv("SERVER_ADDR", "")
	cfg := FromEnv()
	if cfg.DB.Driver != "sqlite" || cfg.DB.DSN != "intakedb.db" {
		t.Fatalf("unexpected db defaults: %+v", cfg.DB)
	}
	if cfg.DB.MaxOpenConns != 1 {
		t.Fatalf("sqlite should use a single connection, got %d", cfg.DB.MaxOpenConns)
	}
	if cfg.Server.Addr != ":3000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.AuthEnabled() {
		t.Fatalf("auth must be off without secrets")
	}
}

func TestFromEnv_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://u:p@localhost/jrm")
	t.Setenv("DB_MAX_OPEN", "")
	t.Setenv("JWT_SECRET", "s3cret")
	cfg := FromEnv()
	if cfg.DB.MaxOpenConns != 10 || cfg.DB.MaxIdleConns != 5 {
		t.Fatalf("unexpected pool: %+v", cfg.DB)
	}
	if !cfg.AuthEnabled() {
		t.Fatalf("auth should be on with JWT_SECRET")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "info"
	cfg.Redis.Password = "old"
	values := map[string]string{
		"log.level":      "debug",
		"db.max_open":    "3",
		"db.max_idle":    "x", // ignored
		"redis.password": "",
		"server.addr":    "", // empty not allowed
	}
	applyOverrides(func(k string) (string, bool) { v, ok := values[k]; return v, ok }, cfg)

	if cfg.Log.Level != "debug" || cfg.DB.MaxOpenConns != 3 || cfg.DB.MaxIdleConns != 0 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Redis.Password != "" {
		t.Fatalf("password should be cleared")
	}
	if cfg.Server.Addr != "" {
		t.Fatalf("addr should stay unset")
	}
}

func TestStore_ValidatorsAndWatchers(t *testing.T) {
	s := NewStore(&Config{})
	s.AddValidator(func(c *Config, _ map[string]bool) error {
		if c.DB.MaxIdleConns > c.DB.MaxOpenConns {
			return errors.New("idle > open")
		}
		return nil
	})
	var seen []map[string]bool
	unwatch := s.Watch(func(_ *Config, changed map[string]bool) { seen = append(seen, changed) })

	bad := cloneConfig(s.Get())
	bad.DB.MaxIdleConns = 5
	if s.UpdateValidated(bad, map[string]bool{"db.max_idle": true}) {
		t.Fatalf("invalid update accepted")
	}
	if s.Get().DB.MaxIdleConns != 0 {
		t.Fatalf("store changed after rejection")
	}

	good := cloneConfig(s.Get())
	good.Log.Level = "warn"
	if !s.UpdateValidated(good, map[string]bool{"log.level": true}) {
		t.Fatalf("valid update rejected")
	}
	if len(seen) != 1 || !seen[0]["log.level"] {
		t.Fatalf("watcher not notified: %v", seen)
	}

	unwatch()
	s.Update(cloneConfig(good), map[string]bool{"x": true})
	if len(seen) != 1 {
		t.Fatalf("removed watcher still called")
	}
}

func TestApolloAppConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Apollo.AppID = "jrm-intake-api"
	cfg.Apollo.Cluster = "default"
	cfg.Apollo.Addrs = "http://apollo-1:8080,http://apollo-2:8080"
	cfg.Apollo.AccessKey = "k"

	ac := apolloAppConfig(cfg)
	if ac.IP != cfg.Apollo.Addrs {
		t.Fatalf("server addresses not mapped: %q", ac.IP)
	}
	if ac.NamespaceName != "application" {
		t.Fatalf("default namespace not applied: %q", ac.NamespaceName)
	}
	if ac.AppID != "jrm-intake-api" || ac.Cluster != "default" || ac.Secret != "k" {
		t.Fatalf("unexpected app config: %+v", ac)
	}

	cfg.Apollo.Namespace = "intake.yaml"
	if ns := apolloAppConfig(cfg).NamespaceName; ns != "intake.yaml" {
		t.Fatalf("namespace not kept: %q", ns)
	}
}
