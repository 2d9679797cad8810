package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/gateway-admin/config"
	ConfigFileName    = "gateway.yml"
)

// GatewayConfig holds all gateway admin configuration settings
type GatewayConfig struct {
	// CORSAllowedOrigins lists origins allowed to call the API from a browser
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" json:"cors_allowed_origins"`

	// TrustedProxies lists the peers (IPs or CIDRs) whose X-Forwarded-For
	// header is believed
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// AuthEnabled requires a bearer JWT on every non-public route
	AuthEnabled bool `yaml:"auth_enabled" json:"auth_enabled"`

	// JWTIssuer, when set, must match the token's iss claim
	JWTIssuer string `yaml:"jwt_issuer" json:"jwt_issuer"`

	// JWTAudience, when set, must be present in the token's aud claim
	JWTAudience string `yaml:"jwt_audience" json:"jwt_audience"`

	// StrictPreferenceKeys rejects preference writes with unknown keys
	StrictPreferenceKeys bool `yaml:"strict_preference_keys" json:"strict_preference_keys"`

	LogLevel     string `yaml:"log_level" json:"log_level"`
	LogFile      string `yaml:"log_file" json:"log_file"`
	LogMaxSizeMB int    `yaml:"log_max_size_mb" json:"log_max_size_mb"`

	MetricsEnabled bool `yaml:"metrics_enabled" json:"metrics_enabled"`

	// RequestTimeoutSeconds bounds server read/write time and client requests
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`

	ClientMaxRetries        int `yaml:"client_max_retries" json:"client_max_retries"`
	ClientMaxElapsedSeconds int `yaml:"client_max_elapsed_seconds" json:"client_max_elapsed_seconds"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors GatewayConfig with pointers so that an explicit false or
// zero in the file is distinguishable from an absent key.
type fileConfig struct {
	CORSAllowedOrigins      []string `yaml:"cors_allowed_origins"`
	TrustedProxies          []string `yaml:"trusted_proxies"`
	AuthEnabled             *bool    `yaml:"auth_enabled"`
	JWTIssuer               *string  `yaml:"jwt_issuer"`
	JWTAudience             *string  `yaml:"jwt_audience"`
	StrictPreferenceKeys    *bool    `yaml:"strict_preference_keys"`
	LogLevel                *string  `yaml:"log_level"`
	LogFile                 *string  `yaml:"log_file"`
	LogMaxSizeMB            *int     `yaml:"log_max_size_mb"`
	MetricsEnabled          *bool    `yaml:"metrics_enabled"`
	RequestTimeoutSeconds   *int     `yaml:"request_timeout_seconds"`
	ClientMaxRetries        *int     `yaml:"client_max_retries"`
	ClientMaxElapsedSeconds *int     `yaml:"client_max_elapsed_seconds"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *GatewayConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *GatewayConfig {
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
			log.WithError(err).Warn("using default configuration")
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
	if err := cfg.Validate(); err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *GatewayConfig {
	return &GatewayConfig{
		CORSAllowedOrigins:      []string{},
		TrustedProxies:          []string{},
		AuthEnabled:             true,
		StrictPreferenceKeys:    true,
		LogLevel:                "info",
		LogMaxSizeMB:            100,
		MetricsEnabled:          true,
		RequestTimeoutSeconds:   15,
		ClientMaxRetries:        5,
		ClientMaxElapsedSeconds: 30,
		sources:                 make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*GatewayConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("GATEWAY_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"cors_allowed_origins", "trusted_proxies", "auth_enabled", "jwt_issuer", "jwt_audience",
		"strict_preference_keys", "log_level", "log_file", "log_max_size_mb",
		"metrics_enabled", "request_timeout_seconds", "client_max_retries",
		"client_max_elapsed_seconds",
	}
}

func (c *GatewayConfig) applyFileConfig(file *fileConfig) {
	if len(file.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = file.CORSAllowedOrigins
		c.sources["cors_allowed_origins"] = "file"
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	setBool(&c.AuthEnabled, file.AuthEnabled, c.sources, "auth_enabled")
	setString(&c.JWTIssuer, file.JWTIssuer, c.sources, "jwt_issuer")
	setString(&c.JWTAudience, file.JWTAudience, c.sources, "jwt_audience")
	setBool(&c.StrictPreferenceKeys, file.StrictPreferenceKeys, c.sources, "strict_preference_keys")
	setString(&c.LogLevel, file.LogLevel, c.sources, "log_level")
	setString(&c.LogFile, file.LogFile, c.sources, "log_file")
	setInt(&c.LogMaxSizeMB, file.LogMaxSizeMB, c.sources, "log_max_size_mb")
	setBool(&c.MetricsEnabled, file.MetricsEnabled, c.sources, "metrics_enabled")
	setInt(&c.RequestTimeoutSeconds, file.RequestTimeoutSeconds, c.sources, "request_timeout_seconds")
	setInt(&c.ClientMaxRetries, file.ClientMaxRetries, c.sources, "client_max_retries")
	setInt(&c.ClientMaxElapsedSeconds, file.ClientMaxElapsedSeconds, c.sources, "client_max_elapsed_seconds")
}

func setBool(dst *bool, v *bool, sources map[string]string, name string) {
	if v != nil {
		*dst = *v
		sources[name] = "file"
	}
}

func setString(dst *string, v *string, sources map[string]string, name string) {
	if v != nil {
		*dst = *v
		sources[name] = "file"
	}
}

func setInt(dst *int, v *int, sources map[string]string, name string) {
	if v != nil {
		*dst = *v
		sources[name] = "file"
	}
}

func (c *GatewayConfig) applyEnvConfig() error {
	if val := os.Getenv("GATEWAY_CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORSAllowedOrigins = splitAndTrim(val)
		c.sources["cors_allowed_origins"] = "environment"
	}
	if val := os.Getenv("GATEWAY_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	for name, dst := range map[string]*bool{
		"auth_enabled":           &c.AuthEnabled,
		"strict_preference_keys": &c.StrictPreferenceKeys,
		"metrics_enabled":        &c.MetricsEnabled,
	} {
		if val := os.Getenv(envName(name)); val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", envName(name), val, err)
			}
			*dst = b
			c.sources[name] = "environment"
		}
	}
	for name, dst := range map[string]*string{
		"jwt_issuer":   &c.JWTIssuer,
		"jwt_audience": &c.JWTAudience,
		"log_level":    &c.LogLevel,
		"log_file":     &c.LogFile,
	} {
		if val := os.Getenv(envName(name)); val != "" {
			*dst = val
			c.sources[name] = "environment"
		}
	}
	for name, dst := range map[string]*int{
		"log_max_size_mb":            &c.LogMaxSizeMB,
		"request_timeout_seconds":    &c.RequestTimeoutSeconds,
		"client_max_retries":         &c.ClientMaxRetries,
		"client_max_elapsed_seconds": &c.ClientMaxElapsedSeconds,
	} {
		if val := os.Getenv(envName(name)); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", envName(name), val, err)
			}
			*dst = i
			c.sources[name] = "environment"
		}
	}
	return nil
}

func envName(attribute string) string {
	return "GATEWAY_" + strings.ToUpper(attribute)
}

// ConfigFilePath returns the path to the config file
func (c *GatewayConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *GatewayConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// RequestTimeout returns the request timeout as a duration
func (c *GatewayConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ClientMaxElapsed returns the client retry budget as a duration
func (c *GatewayConfig) ClientMaxElapsed() time.Duration {
	return time.Duration(c.ClientMaxElapsedSeconds) * time.Second
}

// IsOriginAllowed checks an Origin header against cors_allowed_origins.
func (c *GatewayConfig) IsOriginAllowed(origin string) bool {
	for _, o := range c.CORSAllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *GatewayConfig) Validate() error {
	for _, origin := range c.CORSAllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid cors_allowed_origins value: %s", origin)
		}
	}

	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", proxy)
			}
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level value: %s", c.LogLevel)
	}

	if c.LogMaxSizeMB <= 0 {
		return fmt.Errorf("log_max_size_mb must be positive, got %d", c.LogMaxSizeMB)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.ClientMaxRetries < 0 {
		return fmt.Errorf("client_max_retries must not be negative, got %d", c.ClientMaxRetries)
	}
	if c.ClientMaxElapsedSeconds <= 0 {
		return fmt.Errorf("client_max_elapsed_seconds must be positive, got %d", c.ClientMaxElapsedSeconds)
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *GatewayConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "cors_allowed_origins", Value: strings.Join(c.CORSAllowedOrigins, ","), Source: c.Source("cors_allowed_origins")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "auth_enabled", Value: strconv.FormatBool(c.AuthEnabled), Source: c.Source("auth_enabled")},
		{Name: "jwt_issuer", Value: c.JWTIssuer, Source: c.Source("jwt_issuer")},
		{Name: "jwt_audience", Value: c.JWTAudience, Source: c.Source("jwt_audience")},
		{Name: "strict_preference_keys", Value: strconv.FormatBool(c.StrictPreferenceKeys), Source: c.Source("strict_preference_keys")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_file", Value: c.LogFile, Source: c.Source("log_file")},
		{Name: "log_max_size_mb", Value: strconv.Itoa(c.LogMaxSizeMB), Source: c.Source("log_max_size_mb")},
		{Name: "metrics_enabled", Value: strconv.FormatBool(c.MetricsEnabled), Source: c.Source("metrics_enabled")},
		{Name: "request_timeout_seconds", Value: strconv.Itoa(c.RequestTimeoutSeconds), Source: c.Source("request_timeout_seconds")},
		{Name: "client_max_retries", Value: strconv.Itoa(c.ClientMaxRetries), Source: c.Source("client_max_retries")},
		{Name: "client_max_elapsed_seconds", Value: strconv.Itoa(c.ClientMaxElapsedSeconds), Source: c.Source("client_max_elapsed_seconds")},
	}
}

// FormatText returns a text representation of the configuration
func (c *GatewayConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *GatewayConfig) FormatJSON() (string, error) {
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
