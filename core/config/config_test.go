package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
		LLM:      LLMConfig{APIKey: "key"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, expected longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Tutor.AttemptCeiling != 3 {
		t.Fatalf("attempt_ceiling = %d, expected 3", cfg.Tutor.AttemptCeiling)
	}
	if cfg.Tutor.GreetingTrigger != "start" || cfg.Tutor.VocabTrigger != "vocab" ||
		cfg.Tutor.ReadingTrigger != "reading" || cfg.Tutor.ReflectTrigger != "reflect" {
		t.Fatalf("unexpected trigger defaults: %+v", cfg.Tutor)
	}
	if cfg.Database.MaxConnections != 4 {
		t.Fatalf("max_connections = %d, expected 4", cfg.Database.MaxConnections)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Fatalf("sslmode = %q, expected disable", cfg.Database.SSLMode)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeRequiresLLMKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = " "
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for missing llm api key")
	}
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run_mode = %q, expected longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeWebhookValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "webhook.url") {
		t.Fatalf("expected webhook.url error, got %v", err)
	}

	cfg.Webhook.URL = "https://bot.example.com/hook"
	cfg.Webhook.Listen = "0.0.0.0"
	cfg.Webhook.Port = 8443
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

func TestNormalizeRejectsBadExcludeUpdates(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"bogus"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for invalid exclude_updates")
	}
}
