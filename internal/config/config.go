// Package config provides XML-based application configuration and YAML-based
// line definitions for air-gapped plant deployments. Both are loaded once at
// startup and treated as read-only for the process lifetime.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PLCDataCollector"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Real-time collection configuration
	RealTime RealTimeConfig `xml:"RealTime"`

	// Staging-to-target synchronization configuration
	DataSync DataSyncConfig `xml:"DataSync"`

	// Live graph configuration
	Graph GraphConfig `xml:"Graph"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains staging store settings
type StorageConfig struct {
	DataDirectory string `xml:"DataDirectory"`
	StagingDBFile string `xml:"StagingDBFile"`
	TargetDriver  string `xml:"TargetDriver"`
	TargetDSN     string `xml:"TargetDSN"`
}

// RealTimeConfig contains collection loop settings
type RealTimeConfig struct {
	UpdateFrequency int             `xml:"UpdateFrequencySeconds"`
	TimeZone        string          `xml:"TimeZone"`
	ShowLiveMetrics bool            `xml:"ShowLiveMetrics"`
	AlertThresholds AlertThresholds `xml:"AlertThresholds"`
}

// AlertThresholds holds the schedule-deviation percentages that trigger alerts
type AlertThresholds struct {
	BehindSchedule int `xml:"BehindSchedule"`
	AheadSchedule  int `xml:"AheadSchedule"`
}

// DataSyncConfig contains sync engine settings
type DataSyncConfig struct {
	IntervalSeconds       int  `xml:"IntervalSeconds"`
	BatchSize             int  `xml:"BatchSize"`
	MaxRetries            int  `xml:"MaxRetries"`
	RetryDelaySeconds     int  `xml:"RetryDelaySeconds"`
	EnableDetailedLogging bool `xml:"EnableDetailedLogging"`
}

// GraphConfig contains live graph series settings
type GraphConfig struct {
	MaxDataPoints     int `xml:"MaxDataPoints"`
	TimeWindowSeconds int `xml:"TimeWindowSeconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "10M",
		},
		Storage: StorageConfig{
			DataDirectory: "./data",
			StagingDBFile: "staging.duckdb",
			TargetDriver:  "duckdb",
			TargetDSN:     "./data/target.duckdb",
		},
		RealTime: RealTimeConfig{
			UpdateFrequency: 5,
			TimeZone:        "IST",
			ShowLiveMetrics: true,
			AlertThresholds: AlertThresholds{
				BehindSchedule: 5,
				AheadSchedule:  10,
			},
		},
		DataSync: DataSyncConfig{
			IntervalSeconds:       30,
			BatchSize:             100,
			MaxRetries:            3,
			RetryDelaySeconds:     5,
			EnableDetailedLogging: true,
		},
		Graph: GraphConfig{
			MaxDataPoints:     100,
			TimeWindowSeconds: 300,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- PLC Data Collector Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	// TARGET_DSN override
	if dsn := os.Getenv("TARGET_DSN"); dsn != "" {
		c.Storage.TargetDSN = dsn
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetStagingDBPath returns the absolute path of the staging database file
func (c *AppConfig) GetStagingDBPath() string {
	if filepath.IsAbs(c.Storage.StagingDBFile) {
		return c.Storage.StagingDBFile
	}
	return filepath.Join(c.Storage.DataDirectory, c.Storage.StagingDBFile)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}
