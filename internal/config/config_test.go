package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http.addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Kafka.Topic != "render-jobs" {
		t.Errorf("kafka.topic = %q", cfg.Kafka.Topic)
	}
	if cfg.Render.DefaultPaper != "A4" {
		t.Errorf("render.default_paper = %q", cfg.Render.DefaultPaper)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OCITYSMAP_HTTP_ADDR", ":9999")
	t.Setenv("OCITYSMAP_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("http.addr = %q, want :9999", cfg.HTTP.Addr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Render.DefaultScale = -1
	cfg.Kafka.Topic = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected a validation error")
	}
}
