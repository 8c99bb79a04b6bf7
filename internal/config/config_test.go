package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"typical key", "abcdef", "ab**ef"},
		{"four characters", "abcd", "abcd"},
		{"three characters", "abc", "***"},
		{"empty", "", ""},
		{"long key", "sk-1234567890", "sk*********90"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := MaskKey(tc.key)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnvPanics(t *testing.T) {
	os.Unsetenv("TEST_REQUIRED_VAR")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required variable")
		}
	}()

	mustGetEnv("TEST_REQUIRED_VAR")
}

func TestRelayEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.RelayEnabled() {
		t.Error("Expected relay disabled without RELAY_BOT_URL")
	}

	cfg.RelayBotURL = "https://api.poe.com/bot/GPT-3.5-Turbo"
	if !cfg.RelayEnabled() {
		t.Error("Expected relay enabled with RELAY_BOT_URL set")
	}
}
