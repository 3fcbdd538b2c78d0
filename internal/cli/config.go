package cli

import (
	"fmt"
	"strconv"

	"github.com/awibisono/arsipdrive/internal/config"
	"github.com/spf13/cobra"
)

type configResult struct {
	APIKey          string `json:"apiKey"`
	ClientID        string `json:"clientId"`
	ClientSecret    string `json:"clientSecret"`
	Scope           string `json:"scope"`
	DiscoveryDocURL string `json:"discoveryDocUrl"`
	RootFolderName  string `json:"rootFolderName"`
	MaxRetries      int    `json:"maxRetries"`
	Configured      bool   `json:"configured"`
}

func (r *configResult) Headers() []string { return []string{"Setting", "Value"} }

func (r *configResult) Rows() [][]string {
	return [][]string{
		{"apiKey", orDash(r.APIKey)},
		{"clientId", orDash(r.ClientID)},
		{"clientSecret", orDash(r.ClientSecret)},
		{"scope", r.Scope},
		{"discoveryDocUrl", r.DiscoveryDocURL},
		{"rootFolderName", r.RootFolderName},
		{"maxRetries", strconv.Itoa(r.MaxRetries)},
		{"configured", boolWord(r.Configured)},
	}
}

func (r *configResult) EmptyMessage() string { return "no configuration" }

func redactValue(s string) string {
	if s == "" {
		return ""
	}
	return "[set]"
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and modify configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)

		cfg, err := config.Load()
		if err != nil {
			writer.WriteError("config.show", err)
			return err
		}

		result := &configResult{
			APIKey:          redactValue(cfg.APIKey),
			ClientID:        cfg.ClientID,
			ClientSecret:    redactValue(cfg.ClientSecret),
			Scope:           cfg.Scope,
			DiscoveryDocURL: cfg.DiscoveryDocURL,
			RootFolderName:  cfg.RootFolderName,
			MaxRetries:      cfg.MaxRetries,
			Configured:      cfg.IsConfigured(),
		}
		return writer.WriteSuccess("config.show", result)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		key, value := args[0], args[1]

		cfg, err := config.Load()
		if err != nil {
			writer.WriteError("config.set", err)
			return err
		}

		switch key {
		case "apiKey":
			cfg.APIKey = value
		case "clientId":
			cfg.ClientID = value
		case "clientSecret":
			cfg.ClientSecret = value
		case "scope":
			cfg.Scope = value
		case "discoveryDocUrl":
			cfg.DiscoveryDocURL = value
		case "rootFolderName":
			cfg.RootFolderName = value
		case "maxRetries":
			n, convErr := strconv.Atoi(value)
			if convErr != nil {
				return fmt.Errorf("maxRetries must be an integer: %w", convErr)
			}
			cfg.MaxRetries = n
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}

		if err := cfg.Validate(); err != nil {
			writer.WriteError("config.set", err)
			return err
		}
		if err := cfg.Save(); err != nil {
			writer.WriteError("config.set", err)
			return err
		}
		return writer.WriteSuccess("config.set", map[string]string{"key": key, "status": "saved"})
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
