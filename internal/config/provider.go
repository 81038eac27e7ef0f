package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/crowdmint/deployer/internal/domain/config"
)

const (
	// EnvPrefix is prepended to every environment override
	EnvPrefix = "DEPLOY"

	DefaultNetwork        = "localhost"
	DefaultConfirmTimeout = 5 * time.Minute
	DefaultPollInterval   = 2 * time.Second
)

// projectMarkers identify the root of a contracts project
var projectMarkers = []string{
	"foundry.toml",
	"hardhat.config.js",
	"hardhat.config.ts",
	"hardhat.config.cjs",
	"hardhat.config.mjs",
}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	// .env has to be in the process environment before viper and
	// foundry.toml expansion read from it
	if err := loadDotEnv(projectRoot); err != nil {
		return nil, err
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}

	network, err := NewNetworkResolver(foundryConfig).Resolve(
		v.GetString("network"),
		v.GetString("rpc_url"),
		v.GetUint64("chain_id"),
	)
	if err != nil {
		return nil, err
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		ArtifactsDir:   resolveArtifactsDir(projectRoot, v.GetString("artifacts_dir"), foundryConfig),
		Network:        network,
		PrivateKey:     v.GetString("private_key"),
		GasLimit:       v.GetUint64("gas_limit"),
		ConfirmTimeout: v.GetDuration("confirm_timeout"),
		PollInterval:   v.GetDuration("poll_interval"),
		LogLevel:       v.GetString("log_level"),
		FoundryConfig:  foundryConfig,
	}

	if cfg.ConfirmTimeout <= 0 {
		return nil, fmt.Errorf("confirm_timeout must be positive, got %s", cfg.ConfirmTimeout)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}

	return cfg, nil
}

// FindProjectRoot walks up from the current directory looking for foundry.toml
// or a hardhat config. Falls back to the current directory.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Optional deploy.{toml,yaml,json} next to the project config
	v.SetConfigName("deploy")
	v.AddConfigPath(projectRoot)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Hardhat projects conventionally keep the deployer key in PRIVATE_KEY
	_ = v.BindEnv("private_key", EnvPrefix+"_PRIVATE_KEY", "PRIVATE_KEY")

	v.SetDefault("project_root", projectRoot)
	v.SetDefault("network", DefaultNetwork)
	v.SetDefault("confirm_timeout", DefaultConfirmTimeout)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("gas_limit", 0)
	v.SetDefault("chain_id", 0)
	v.SetDefault("log_level", "info")

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(f.Name, f); err != nil {
				panic(err)
			}
		})
	}

	return v
}

// resolveArtifactsDir picks the compiled artifacts directory: explicit setting,
// Hardhat's artifacts/, the foundry profile out dir, then out/.
func resolveArtifactsDir(projectRoot, configured string, foundry *config.FoundryConfig) string {
	if configured != "" {
		if filepath.IsAbs(configured) {
			return configured
		}
		return filepath.Join(projectRoot, configured)
	}

	hardhat := filepath.Join(projectRoot, "artifacts")
	if info, err := os.Stat(hardhat); err == nil && info.IsDir() {
		return hardhat
	}

	if foundry != nil {
		if profile, ok := foundry.Profile["default"]; ok && profile.OutPath != "" {
			return filepath.Join(projectRoot, profile.OutPath)
		}
		return filepath.Join(projectRoot, "out")
	}

	// Nothing compiled yet, point at the directory the project's toolchain would use
	for _, marker := range projectMarkers[1:] {
		if _, err := os.Stat(filepath.Join(projectRoot, marker)); err == nil {
			return hardhat
		}
	}
	return filepath.Join(projectRoot, "out")
}
