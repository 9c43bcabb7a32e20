package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file.
type Config struct {
	APIKey        string `json:"api_key,omitempty"         yaml:"api_key,omitempty"`
	APIBase       string `json:"api_base,omitempty"        yaml:"api_base,omitempty"`
	UploadAPIBase string `json:"upload_api_base,omitempty" yaml:"upload_api_base,omitempty"`
	APIVersion    string `json:"api_version,omitempty"     yaml:"api_version,omitempty"`
	Output        string `json:"output,omitempty"          yaml:"output,omitempty"`
	SkipTLSVerify bool   `json:"skip_tls_verify,omitempty" yaml:"skip_tls_verify,omitempty"`
}

// configSetters maps each settable key to the field it writes.
var configSetters = map[string]func(*Config, string) error{
	"api_key": func(c *Config, v string) error {
		if v == "" {
			return constants.ErrEmptyAPIKey
		}

		c.APIKey = v

		return nil
	},
	"api_base":        func(c *Config, v string) error { c.APIBase = v; return nil },
	"upload_api_base": func(c *Config, v string) error { c.UploadAPIBase = v; return nil },
	"api_version":     func(c *Config, v string) error { c.APIVersion = v; return nil },
	"output": func(c *Config, v string) error {
		switch v {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			c.Output = v

			return nil
		default:
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, v)
		}
	},
	"skip_tls_verify": func(c *Config, v string) error {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid value for skip_tls_verify: %w", err)
		}

		c.SkipTLSVerify = skip

		return nil
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the asyncstripe config file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with the API key masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.APIKey = maskSecret(config.APIKey)

			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format != constants.FormatTable {
				return encodeStructured(cmd.OutOrStdout(), format, config)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Setting", "Value")
			_ = table.Append("api_key", config.APIKey)
			_ = table.Append("api_base", config.APIBase)
			_ = table.Append("upload_api_base", config.UploadAPIBase)
			_ = table.Append("api_version", config.APIVersion)
			_ = table.Append("output", config.Output)
			_ = table.Append("skip_tls_verify", strconv.FormatBool(config.SkipTLSVerify))

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of api_key, api_base, upload_api_base, api_version, output or skip_tls_verify",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			setter, ok := configSetters[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()
			if err := setter(config, value); err != nil {
				return err
			}

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so the default applies again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if _, ok := configSetters[key]; !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()
			unsetConfigValue(config, key)

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)

			return nil
		},
	}
}

func unsetConfigValue(config *Config, key string) {
	switch key {
	case "api_key":
		config.APIKey = ""
	case "api_base":
		config.APIBase = ""
	case "upload_api_base":
		config.UploadAPIBase = ""
	case "api_version":
		config.APIVersion = ""
	case "output":
		config.Output = ""
	case "skip_tls_verify":
		config.SkipTLSVerify = false
	}
}

// loadConfig reads the stored settings. Values coming from flags or the
// environment are left out so they are never written back to disk.
func loadConfig() *Config {
	config := &Config{}

	path := configFilePath()
	if path == "" {
		return config
	}

	// path is derived from the --config flag or the user's home directory.
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func configFilePath() string {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".asyncstripe", "config.yml")
}

func saveConfigStruct(config *Config) error {
	configFile := configFilePath()
	if configFile == "" {
		return fmt.Errorf("failed to locate config file")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configFile, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
