package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/docvault/config"
	ConfigFileName    = "docvault.yml"
)

// Config holds all server configuration settings
type Config struct {
	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// APIDocumentListLimitMax is the maximum number of results for document listing requests
	APIDocumentListLimitMax int `yaml:"api_document_list_limit_max" json:"api_document_list_limit_max"`

	// AuthTokenTTL is the maximum accepted bearer token age in seconds
	AuthTokenTTL int `yaml:"auth_token_ttl" json:"auth_token_ttl"`

	// ReencryptWindowDays is the default validity window for re-encryption requests
	ReencryptWindowDays int `yaml:"reencrypt_window_days" json:"reencrypt_window_days"`

	// AuditEnabled enables audit event logging
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		TrustedProxies:          []string{},
		APIDocumentListLimitMax: 1000,
		AuthTokenTTL:            480,
		ReencryptWindowDays:     7,
		AuditEnabled:            true,
		sources:                 make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*Config, error) {
	config := newDefault()

	// Initialize all sources as "default"
	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	// Determine config file path
	configPath := os.Getenv("DOCVAULT_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	// Try to load from config file
	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	// Override with environment variables
	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"trusted_proxies", "api_document_list_limit_max",
		"auth_token_ttl", "reencrypt_window_days", "audit_enabled",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.APIDocumentListLimitMax != 0 {
		c.APIDocumentListLimitMax = file.APIDocumentListLimitMax
		c.sources["api_document_list_limit_max"] = "file"
	}
	if file.AuthTokenTTL != 0 {
		c.AuthTokenTTL = file.AuthTokenTTL
		c.sources["auth_token_ttl"] = "file"
	}
	if file.ReencryptWindowDays != 0 {
		c.ReencryptWindowDays = file.ReencryptWindowDays
		c.sources["reencrypt_window_days"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("DOCVAULT_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("DOCVAULT_API_DOCUMENT_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.APIDocumentListLimitMax = i
			c.sources["api_document_list_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("DOCVAULT_AUTH_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.AuthTokenTTL = i
			c.sources["auth_token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("DOCVAULT_REENCRYPT_WINDOW_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ReencryptWindowDays = i
			c.sources["reencrypt_window_days"] = "environment"
		}
	}
	if val := os.Getenv("DOCVAULT_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// TokenTTL returns the bearer token TTL as a duration
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.AuthTokenTTL) * time.Second
}

// ReencryptWindow returns the default re-encryption request window as a duration
func (c *Config) ReencryptWindow() time.Duration {
	return time.Duration(c.ReencryptWindowDays) * 24 * time.Hour
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *Config) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.APIDocumentListLimitMax < 1 {
		return fmt.Errorf("api_document_list_limit_max must be positive, got %d", c.APIDocumentListLimitMax)
	}
	if c.AuthTokenTTL < 1 {
		return fmt.Errorf("auth_token_ttl must be positive, got %d", c.AuthTokenTTL)
	}
	if c.ReencryptWindowDays < 1 {
		return fmt.Errorf("reencrypt_window_days must be positive, got %d", c.ReencryptWindowDays)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "api_document_list_limit_max", Value: strconv.Itoa(c.APIDocumentListLimitMax), Source: c.Source("api_document_list_limit_max")},
		{Name: "auth_token_ttl", Value: strconv.Itoa(c.AuthTokenTTL), Source: c.Source("auth_token_ttl")},
		{Name: "reencrypt_window_days", Value: strconv.Itoa(c.ReencryptWindowDays), Source: c.Source("reencrypt_window_days")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
