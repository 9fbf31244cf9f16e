package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podboost/internal/testsupport"
)

func TestConfigInitShowAndPath(t *testing.T) {
	env := setupCLITestEnv(t)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error for existing config without --overwrite")
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "campaign_url") {
		t.Fatalf("config show missing monitor settings: %q", out)
	}
	// The test config carries an API key; it must not leak.
	if !strings.Contains(out, "[redacted]") {
		t.Fatalf("expected redacted credentials in output: %q", out)
	}

	out, _, err = runCLI(t, []string{"config", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if !strings.Contains(out, env.configPath) {
		t.Fatalf("config path output %q missing %q", out, env.configPath)
	}
}

func TestRedactConfigBlanksSecrets(t *testing.T) {
	cfg := *testsupport.NewConfig(t)
	cfg.PodHome.APIKey = "secret-key"
	cfg.Wallet.AccessToken = "wallet-token"
	cfg.Telegram.BotToken = "bot-token"
	cfg.Backend.WebhookToken = "hook-token"

	redacted := redactConfig(cfg)
	for name, value := range map[string]string{
		"podhome api key": redacted.PodHome.APIKey,
		"wallet token":    redacted.Wallet.AccessToken,
		"telegram token":  redacted.Telegram.BotToken,
		"backend token":   redacted.Backend.WebhookToken,
	} {
		if value != "[redacted]" {
			t.Fatalf("%s not redacted: %q", name, value)
		}
	}
	if cfg.PodHome.APIKey != "secret-key" {
		t.Fatal("redactConfig mutated its input")
	}
}
