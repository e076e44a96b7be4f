package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the subset of Config that can be expressed in a
// distman.yaml file or DISTMAN_* environment variable; mapstructure tags
// let viper unmarshal directly into it (grounded on bnema-gordon's
// internal/config.Load, which does the same viper.UnmarshalKey dance for
// its own on-disk settings).
type fileConfig struct {
	HostArch           string            `mapstructure:"host_arch"`
	HostType           string            `mapstructure:"host_type"`
	TempRoot           string            `mapstructure:"temp_root"`
	Debug              bool              `mapstructure:"debug"`
	Layout             string            `mapstructure:"layout"`
	CacheTTLSeconds    int               `mapstructure:"cache_ttl_seconds"`
	FetchTimeoutSecond int               `mapstructure:"fetch_timeout_seconds"`
	ProxyURL           string            `mapstructure:"proxy_url"`
	InsecureSkipVerify bool              `mapstructure:"insecure_skip_verify"`
	UserAgent          string            `mapstructure:"user_agent"`
	BuildVariables     map[string]string `mapstructure:"build_variables"`
	CMakeCmd           string            `mapstructure:"cmake_cmd"`
	MakeCmd            string            `mapstructure:"make_cmd"`
	CMakeDebugCmd      string            `mapstructure:"cmake_debug_cmd"`
	MakeDebugCmd       string            `mapstructure:"make_debug_cmd"`
	HostProvides       []string          `mapstructure:"host_provides"`
}

// Load reads distman.yaml (or the file at cfgFile, if non-empty) plus
// DISTMAN_*-prefixed environment overrides, layering them onto Default().
// A distman.yaml absent from every search path is not an error; an
// explicit cfgFile that does not exist, or a malformed file, is.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("distman")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.distman")
		}
		v.AddConfigPath("/etc/distman")
	}
	v.SetEnvPrefix("distman")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	// viper lowercases every key it reads, but CMake cache variable names
	// are case-sensitive, so build_variables is re-read from the file as is.
	if used := v.ConfigFileUsed(); used != "" {
		if data, err := os.ReadFile(used); err == nil {
			var raw struct {
				BuildVariables map[string]string `yaml:"build_variables"`
			}
			if err := yaml.Unmarshal(data, &raw); err == nil && len(raw.BuildVariables) > 0 {
				fc.BuildVariables = raw.BuildVariables
			}
		}
	}

	cfg := Default()
	if fc.HostArch != "" {
		cfg.HostArch = fc.HostArch
	}
	if fc.HostType != "" {
		cfg.HostType = fc.HostType
	}
	if fc.TempRoot != "" {
		cfg.TempRoot = fc.TempRoot
	}
	cfg.Debug = fc.Debug
	switch fc.Layout {
	case "copy":
		cfg.Layout = LayoutCopy
	case "symlink", "":
		cfg.Layout = LayoutSymlink
	default:
		return Config{}, fmt.Errorf("config: layout must be \"symlink\" or \"copy\", got %q", fc.Layout)
	}
	if fc.CacheTTLSeconds != 0 {
		cfg.CacheTTL = time.Duration(fc.CacheTTLSeconds) * time.Second
	}
	if fc.FetchTimeoutSecond != 0 {
		cfg.FetchTimeout = time.Duration(fc.FetchTimeoutSecond) * time.Second
	}
	cfg.ProxyURL = fc.ProxyURL
	cfg.InsecureSkipVerify = fc.InsecureSkipVerify
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if len(fc.BuildVariables) > 0 {
		cfg.BuildVariables = fc.BuildVariables
	}
	if fc.CMakeCmd != "" {
		cfg.CMakeCmd = fc.CMakeCmd
	}
	if fc.MakeCmd != "" {
		cfg.MakeCmd = fc.MakeCmd
	}
	if fc.CMakeDebugCmd != "" {
		cfg.CMakeDebugCmd = fc.CMakeDebugCmd
	}
	if fc.MakeDebugCmd != "" {
		cfg.MakeDebugCmd = fc.MakeDebugCmd
	}
	cfg.HostProvides = fc.HostProvides

	return cfg, nil
}
