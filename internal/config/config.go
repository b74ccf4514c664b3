// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the budgetd YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full budgetd configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`
}

// StorageConfig configures the ledger file location.
type StorageConfig struct {
	DataFile string `yaml:"data_file" validate:"required"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{DataFile: "budget.json"},
		Logging: LoggingConfig{Level: "info", JSON: true},
	}
}

// Load reads the config file at path, creating it with defaults on
// first run. Environment variables BUDGETD_PORT and BUDGETD_DATA_FILE
// override the file, matching how the service is configured in
// containers.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("First run detected, creating the config at %s\n", path)
		if err := writeDefault(path); err != nil {
			return cfg, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file: %w", err)
	}

	if port := os.Getenv("BUDGETD_PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &cfg.Server.Port); err != nil {
			return cfg, fmt.Errorf("invalid BUDGETD_PORT %q: %w", port, err)
		}
	}
	if file := os.Getenv("BUDGETD_DATA_FILE"); file != "" {
		cfg.Storage.DataFile = file
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create the config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
