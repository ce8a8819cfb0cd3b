//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Stormworks Group
//
// This file is part of Drainpipe.
//
// Drainpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Drainpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Drainpipe. If not, see https://www.gnu.org/licenses/.

// Package config holds the run configuration threaded through every task:
// source credentials, the warehouse destination, and business toggles. The
// struct is loaded once (YAML file plus environment overrides for secrets)
// and treated as immutable for the duration of a run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Destination selects where extracted and transformed tables are persisted.
type Destination string

const (
	DestinationPostgres Destination = "postgres"
	DestinationCSV      Destination = "csv"
	DestinationS3       Destination = "s3"
	DestinationMongo    Destination = "mongo"
)

// TrelloConfig configures the Trello extraction adapter.
type TrelloConfig struct {
	Key     string `yaml:"key"`
	Token   string `yaml:"token"`
	BoardID string `yaml:"board_id"`
	BaseURL string `yaml:"base_url"`
}

// FloatConfig configures the Float scheduling extraction adapter.
type FloatConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// XeroConfig configures the Xero quote extraction adapter.
type XeroConfig struct {
	Token    string `yaml:"token"`
	TenantID string `yaml:"tenant_id"`
	BaseURL  string `yaml:"base_url"`
}

// SimproConfig configures the Simpro quote extraction adapter.
type SimproConfig struct {
	Token     string `yaml:"token"`
	CompanyID string `yaml:"company_id"`
	BaseURL   string `yaml:"base_url"`
}

// SheetsConfig configures the Google Sheets extraction adapter.
type SheetsConfig struct {
	APIKey        string `yaml:"api_key"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	Range         string `yaml:"range"`
	BaseURL       string `yaml:"base_url"`
}

// PostgresConfig configures the analytical warehouse store.
type PostgresConfig struct {
	DSN    string `yaml:"dsn"`
	Schema string `yaml:"schema"`
}

// CSVConfig configures the local CSV directory store.
type CSVConfig struct {
	Dir string `yaml:"dir"`
}

// S3Config configures the S3 object store. Static keys are only needed for
// self-hosted endpoints; on AWS the default credential chain applies.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	EndpointURL     string `yaml:"endpoint_url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// MongoConfig configures the Mongo raw staging store.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Config is the full run configuration.
type Config struct {
	Destination Destination `yaml:"destination"`
	// ValidateTables enables the table validation pass before analytics
	// tables are loaded.
	ValidateTables bool `yaml:"validate_tables"`

	Trello TrelloConfig `yaml:"trello"`
	Float  FloatConfig  `yaml:"float"`
	Xero   XeroConfig   `yaml:"xero"`
	Simpro SimproConfig `yaml:"simpro"`
	Sheets SheetsConfig `yaml:"sheets"`

	Postgres PostgresConfig `yaml:"postgres"`
	CSV      CSVConfig      `yaml:"csv"`
	S3       S3Config       `yaml:"s3"`
	Mongo    MongoConfig    `yaml:"mongo"`

	// LabourRates maps a Float role name to an hourly cost rate. The
	// "default" key applies to roles without an explicit entry.
	LabourRates map[string]float64 `yaml:"labour_rates"`
}

// Default returns a configuration with sensible local defaults: CSV
// destination under ./data, validation on.
func Default() *Config {
	return &Config{
		Destination:    DestinationCSV,
		ValidateTables: true,
		CSV:            CSVConfig{Dir: "data"},
		LabourRates:    map[string]float64{"default": 65},
	}
}

// Load reads a YAML configuration file, applies environment overrides for
// secrets, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays secrets from the environment so credentials never need
// to live in the config file.
func (c *Config) applyEnv() {
	overlay := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	overlay(&c.Trello.Key, "DRAINPIPE_TRELLO_KEY")
	overlay(&c.Trello.Token, "DRAINPIPE_TRELLO_TOKEN")
	overlay(&c.Float.Token, "DRAINPIPE_FLOAT_TOKEN")
	overlay(&c.Xero.Token, "DRAINPIPE_XERO_TOKEN")
	overlay(&c.Simpro.Token, "DRAINPIPE_SIMPRO_TOKEN")
	overlay(&c.Sheets.APIKey, "DRAINPIPE_SHEETS_API_KEY")
	overlay(&c.Postgres.DSN, "DRAINPIPE_POSTGRES_DSN")
	overlay(&c.S3.AccessKeyID, "DRAINPIPE_S3_ACCESS_KEY_ID")
	overlay(&c.S3.SecretAccessKey, "DRAINPIPE_S3_SECRET_ACCESS_KEY")
	overlay(&c.Mongo.URI, "DRAINPIPE_MONGO_URI")
}

// Validate checks that the selected destination is a recognized option and
// is configured well enough to open.
func (c *Config) Validate() error {
	switch c.Destination {
	case DestinationPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("config: postgres destination requires a dsn")
		}
	case DestinationCSV:
		if c.CSV.Dir == "" {
			return fmt.Errorf("config: csv destination requires a dir")
		}
	case DestinationS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("config: s3 destination requires a bucket")
		}
	case DestinationMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("config: mongo destination requires uri and database")
		}
	default:
		return fmt.Errorf("config: unknown destination %q", c.Destination)
	}
	return nil
}

// Rate returns the hourly labour rate for a role, falling back to the
// "default" entry.
func (c *Config) Rate(role string) float64 {
	if rate, ok := c.LabourRates[role]; ok {
		return rate
	}
	return c.LabourRates["default"]
}
