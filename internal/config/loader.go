package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/netguru/dyndns-updater/internal/updater"
)

// EnvPrefix prefixes every environment variable overriding a setting.
const EnvPrefix = "DYNDNS"

// Keys of the JSON settings file.
const (
	KeyIP             = "ip"
	KeyIPURL          = "ipURL"
	KeyUpdateURL      = "updateURL"
	KeyUsername       = "username"
	KeyPassword       = "password"
	KeyDomains        = "domains"
	KeyTimeout        = "timeout" // milliseconds
	KeyDelay          = "delay"   // milliseconds
	KeyAcceptAllCerts = "acceptAllCerts"
)

// DefaultPath returns the settings file used when none is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".dmedyn.json")
}

// Load reads the settings file at path, applies DYNDNS_* environment overrides
// and returns the resulting updater configuration. Required fields are not
// checked here; the updater validates them at the start of every cycle.
func Load(path string) (updater.Config, error) {
	// Domain names contain dots, so the default key delimiter cannot be used.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return updater.Config{}, fmt.Errorf("no %s settings file found or the file is invalid JSON: %w", path, err)
	}

	domains, err := parseDomains(v.Get(KeyDomains))
	if err != nil {
		return updater.Config{}, err
	}

	return updater.Config{
		IP:             v.GetString(KeyIP),
		IPURL:          v.GetString(KeyIPURL),
		UpdateURL:      v.GetString(KeyUpdateURL),
		Username:       v.GetString(KeyUsername),
		Password:       v.GetString(KeyPassword),
		Domains:        domains,
		Timeout:        time.Duration(v.GetInt64(KeyTimeout)) * time.Millisecond,
		Delay:          time.Duration(v.GetInt64(KeyDelay)) * time.Millisecond,
		AcceptAllCerts: v.GetBool(KeyAcceptAllCerts),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyIPURL, updater.DefaultIPURL)
	v.SetDefault(KeyUpdateURL, updater.DefaultUpdateURL)
	v.SetDefault(KeyTimeout, updater.DefaultTimeout.Milliseconds())
	v.SetDefault(KeyDelay, updater.DefaultDelay.Milliseconds())
	v.SetDefault(KeyAcceptAllCerts, false)
}

// parseDomains converts the "domains" object (name -> record ID) into strings.
// Record IDs may be given as JSON numbers or strings.
func parseDomains(raw any) (map[string]string, error) {
	if raw == nil {
		return map[string]string{}, nil
	}
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %q setting: %w", KeyDomains, err)
	}

	domains := make(map[string]string, len(m))
	for name, id := range m {
		recordID, err := cast.ToStringE(id)
		if err != nil || recordID == "" {
			return nil, fmt.Errorf("invalid record ID for domain %s: %v", name, id)
		}
		domains[name] = recordID
	}
	return domains, nil
}
