package config

import (
	"os"
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_KEY_1",
			defaultValue: "default",
			envValue:     "env_value",
			expected:     "env_value",
		},
		{
			name:         "returns default when environment variable is empty",
			key:          "TEST_KEY_2",
			defaultValue: "default",
			envValue:     "",
			expected:     "default",
		},
		{
			name:         "handles empty default value",
			key:          "TEST_KEY_3",
			defaultValue: "",
			envValue:     "env_value",
			expected:     "env_value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			result := getenv(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("getenv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, result, tt.expected)
			}
		})
	}
}

func TestGetenvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "parses duration when set",
			envValue: "30s",
			def:      10 * time.Second,
			expected: 30 * time.Second,
		},
		{
			name:     "returns default when unset",
			envValue: "",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "returns default on unparseable value",
			envValue: "soon",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_DURATION_KEY"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			}

			result := getenvDuration(key, tt.def)
			if result != tt.expected {
				t.Errorf("getenvDuration(%q, %v) = %v, want %v", key, tt.def, result, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	os.Setenv("TEST_INT_KEY", "42")
	defer os.Unsetenv("TEST_INT_KEY")
	if got := getenvInt("TEST_INT_KEY", 7); got != 42 {
		t.Errorf("getenvInt() = %d, want 42", got)
	}
	if got := getenvInt("TEST_INT_KEY_UNSET", 7); got != 7 {
		t.Errorf("getenvInt() = %d, want default 7", got)
	}

	os.Setenv("TEST_INT_KEY_BAD", "many")
	defer os.Unsetenv("TEST_INT_KEY_BAD")
	if got := getenvInt("TEST_INT_KEY_BAD", 7); got != 7 {
		t.Errorf("getenvInt() = %d, want default 7 on unparseable value", got)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.AppName != "msgbridge" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "msgbridge")
	}
	if cfg.HTTPPort != ":8080" {
		t.Errorf("HTTPPort = %q, want %q", cfg.HTTPPort, ":8080")
	}
	if cfg.MaxBodyChars != 10000 {
		t.Errorf("MaxBodyChars = %d, want 10000", cfg.MaxBodyChars)
	}
	if cfg.Watch.TriggerKeyword != "incoming" {
		t.Errorf("Watch.TriggerKeyword = %q, want %q", cfg.Watch.TriggerKeyword, "incoming")
	}
	if cfg.Watch.CooldownWindow != 10*time.Second {
		t.Errorf("Watch.CooldownWindow = %v, want 10s", cfg.Watch.CooldownWindow)
	}
	if cfg.Watch.RestartBackoff != 5*time.Second {
		t.Errorf("Watch.RestartBackoff = %v, want 5s", cfg.Watch.RestartBackoff)
	}
	if cfg.Watch.StreamCmd == "" {
		t.Error("Watch.StreamCmd default is empty")
	}
	if cfg.Automation.Timeout != 15*time.Second {
		t.Errorf("Automation.Timeout = %v, want 15s", cfg.Automation.Timeout)
	}
	if cfg.Automation.DeclineScript == "" || cfg.Automation.RestartScript == "" {
		t.Error("automation scripts missing defaults")
	}
	if cfg.Sender.Mode != "script" {
		t.Errorf("Sender.Mode = %q, want %q", cfg.Sender.Mode, "script")
	}
	if cfg.Forward.MonitorCmd != "" || cfg.Forward.URL != "" {
		t.Error("forwarding should be disabled by default")
	}
	if cfg.Forward.RestartBackoff != 5*time.Second {
		t.Errorf("Forward.RestartBackoff = %v, want 5s", cfg.Forward.RestartBackoff)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	envVars := map[string]string{
		"APP_NAME":              "bridge-test",
		"HTTP_PORT":             ":9090",
		"API_KEY":               "k",
		"TRIGGER_KEYWORD":       "ringing",
		"COOLDOWN_WINDOW":       "30s",
		"WATCH_RESTART_BACKOFF": "1s",
		"REPLY_RECIPIENT":       "+15551234567",
		"REPLY_TEMPLATE":        "custom reply",
		"SENDER_MODE":           "http",
		"SENDER_URL":            "http://send.local/send",
		"MONITOR_CMD":           "monitor --json",
		"FORWARD_URL":           "http://hooks.local/inbound",
	}
	for k, v := range envVars {
		os.Setenv(k, v)
	}
	defer func() {
		for k := range envVars {
			os.Unsetenv(k)
		}
	}()

	cfg := FromEnv()

	if cfg.AppName != "bridge-test" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "bridge-test")
	}
	if cfg.HTTPPort != ":9090" {
		t.Errorf("HTTPPort = %q, want %q", cfg.HTTPPort, ":9090")
	}
	if cfg.Watch.TriggerKeyword != "ringing" {
		t.Errorf("Watch.TriggerKeyword = %q, want %q", cfg.Watch.TriggerKeyword, "ringing")
	}
	if cfg.Watch.CooldownWindow != 30*time.Second {
		t.Errorf("Watch.CooldownWindow = %v, want 30s", cfg.Watch.CooldownWindow)
	}
	if cfg.Reply.Recipient != "+15551234567" {
		t.Errorf("Reply.Recipient = %q, want %q", cfg.Reply.Recipient, "+15551234567")
	}
	if cfg.Reply.Template != "custom reply" {
		t.Errorf("Reply.Template = %q, want %q", cfg.Reply.Template, "custom reply")
	}
	if cfg.Sender.Mode != "http" || cfg.Sender.URL != "http://send.local/send" {
		t.Errorf("Sender = %+v", cfg.Sender)
	}
	if cfg.Forward.MonitorCmd != "monitor --json" || cfg.Forward.URL != "http://hooks.local/inbound" {
		t.Errorf("Forward = %+v", cfg.Forward)
	}
}
