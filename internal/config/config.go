package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultConfigFile = "config.json"

type Config struct {
	Token          string `json:"token"`
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Timezone       string `json:"timezone"`
	AIURL          string `json:"ai_url"`
	AIKey          string `json:"ai_key"`
	AIModel        string `json:"ai_model"`
	RulesPath      string `json:"rules_path"`
}

func DefaultUserConfigPath() (string, error) {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "todoist-planner", defaultConfigFile), nil
}

func LoadConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, false, nil
		}
		return Config{}, false, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, true, fmt.Errorf("parse config: %w", err)
	}
	return cfg, true, nil
}

func SaveConfig(path string, cfg Config) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func EnsureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o700)
}

func MergeConfig(base Config, override Config) Config {
	result := base
	if override.Token != "" {
		result.Token = override.Token
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.TimeoutSeconds > 0 {
		result.TimeoutSeconds = override.TimeoutSeconds
	}
	if override.Timezone != "" {
		result.Timezone = override.Timezone
	}
	if override.AIURL != "" {
		result.AIURL = override.AIURL
	}
	if override.AIKey != "" {
		result.AIKey = override.AIKey
	}
	if override.AIModel != "" {
		result.AIModel = override.AIModel
	}
	if override.RulesPath != "" {
		result.RulesPath = override.RulesPath
	}
	return result
}

// ApplyEnv layers environment variables over cfg. Env wins over the
// file so secrets never have to be written to disk.
func ApplyEnv(cfg Config) Config {
	return MergeConfig(cfg, Config{
		Token:    strings.TrimSpace(os.Getenv("TODOIST_API_TOKEN")),
		Timezone: strings.TrimSpace(os.Getenv("PLANNER_TIMEZONE")),
		AIURL:    strings.TrimSpace(os.Getenv("PLANNER_AI_URL")),
		AIKey:    strings.TrimSpace(os.Getenv("PLANNER_AI_KEY")),
		AIModel:  strings.TrimSpace(os.Getenv("PLANNER_AI_MODEL")),
	})
}
