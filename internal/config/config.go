package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds application-specific configuration.
type AppConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	DryRun       bool          `mapstructure:"dry_run"`
}

// DNSConfig names the zone to manage and the zone endpoint aliases point into.
type DNSConfig struct {
	Zone     string `mapstructure:"zone"`
	BaseZone string `mapstructure:"base_zone"`
}

// PortainerConfig holds the inventory API settings.
type PortainerConfig struct {
	APIEndpoint string        `mapstructure:"api_endpoint"`
	APIToken    string        `mapstructure:"api_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PowerDNSConfig holds the authoritative DNS API settings.
type PowerDNSConfig struct {
	APIEndpoint string        `mapstructure:"api_endpoint"`
	APIToken    string        `mapstructure:"api_token"`
	ServerID    string        `mapstructure:"server_id"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// EtcdConfig holds the optional cycle lock settings. An empty endpoint list disables etcd.
type EtcdConfig struct {
	Endpoints         []string      `mapstructure:"endpoints"`
	DialTimeout       time.Duration `mapstructure:"dial_timeout"`
	LockKey           string        `mapstructure:"lock_key"`
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
	LockTimeout       time.Duration `mapstructure:"lock_timeout"`
	LockRetryInterval time.Duration `mapstructure:"lock_retry_interval"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// Config is the top-level configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	DNS       DNSConfig       `mapstructure:"dns"`
	Portainer PortainerConfig `mapstructure:"portainer"`
	PowerDNS  PowerDNSConfig  `mapstructure:"powerdns"`
	Logging   LoggingConfig   `mapstructure:"log"`
	Etcd      EtcdConfig      `mapstructure:"etcd"`
}

// requiredKeys maps config keys that have no usable default to the environment variable users set.
var requiredKeys = []struct {
	key string
	env string
}{
	{"dns.zone", "DNS_ZONE"},
	{"portainer.api_endpoint", "PORTAINER_API_ENDPOINT"},
	{"portainer.api_token", "PORTAINER_API_TOKEN"},
	{"powerdns.api_endpoint", "POWERDNS_API_ENDPOINT"},
	{"powerdns.api_token", "POWERDNS_API_TOKEN"},
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
// An empty configFile falls back to config.yaml in the working directory.
func InitConfig(v *viper.Viper, configFile string) error {
	v.SetDefault("app.poll_interval", 5*time.Second)
	v.SetDefault("app.dry_run", false)
	v.SetDefault("dns.zone", "")
	v.SetDefault("dns.base_zone", "")
	v.SetDefault("portainer.api_endpoint", "")
	v.SetDefault("portainer.api_token", "")
	v.SetDefault("portainer.timeout", 10*time.Second)
	v.SetDefault("powerdns.api_endpoint", "")
	v.SetDefault("powerdns.api_token", "")
	v.SetDefault("powerdns.server_id", "localhost")
	v.SetDefault("powerdns.timeout", 10*time.Second)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("etcd.endpoints", []string{})
	v.SetDefault("etcd.dial_timeout", 2*time.Second)
	v.SetDefault("etcd.lock_key", "portainer-dns-sync")
	v.SetDefault("etcd.lock_ttl", 60*time.Second)
	v.SetDefault("etcd.lock_timeout", 5*time.Second)
	v.SetDefault("etcd.lock_retry_interval", 250*time.Millisecond)
	v.SetDefault("etcd.request_timeout", 5*time.Second)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // Looks for config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Names used by earlier deployments of the tool.
	if err := v.BindEnv("dns.base_zone", "DNS_BASE_ZONE", "BASE_ZONE"); err != nil {
		return err
	}
	if err := v.BindEnv("app.poll_interval", "APP_POLL_INTERVAL", "POLL_INTERVAL"); err != nil {
		return err
	}

	return nil
}

// Load unmarshals the configuration into the Config struct and checks required settings.
func Load(v *viper.Viper) (*Config, error) {
	var missing []string
	for _, rk := range requiredKeys {
		if strings.TrimSpace(v.GetString(rk.key)) == "" {
			missing = append(missing, rk.env)
		}
	}
	if len(missing) > 0 {
		return nil, NewConfigurationError(missing)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	config.DNS.Zone = CanonicalZone(config.DNS.Zone)
	config.DNS.BaseZone = CanonicalZone(config.DNS.BaseZone)
	if config.DNS.BaseZone == "" {
		config.DNS.BaseZone = config.DNS.Zone
	}
	config.Portainer.APIEndpoint = strings.TrimRight(config.Portainer.APIEndpoint, "/")
	config.PowerDNS.APIEndpoint = strings.TrimRight(config.PowerDNS.APIEndpoint, "/")

	if config.Etcd.LockEnabled() && config.Etcd.RequestTimeout <= 0 {
		return nil, fmt.Errorf("etcd.request_timeout must be positive, got %s", config.Etcd.RequestTimeout)
	}
	if config.App.PollInterval <= 0 {
		return nil, fmt.Errorf("app.poll_interval must be positive, got %s", config.App.PollInterval)
	}
	return &config, nil
}

// CanonicalZone lowercases a zone name and strips surrounding dots.
func CanonicalZone(zone string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(zone)), ".")
}

// LockEnabled reports whether cycles are serialized through etcd.
func (c *EtcdConfig) LockEnabled() bool {
	return len(c.Endpoints) > 0
}
