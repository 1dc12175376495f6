package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cemck/siddy/internal/config"
)

// --- voices ---

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "Inspect saved voice clips",
}

var voicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved voices",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		voices, err := client.listVoices(cmd.Context())
		if err != nil {
			return err
		}

		if len(voices) == 0 {
			fmt.Println("No voices saved yet.")
			return nil
		}

		for _, v := range voices {
			fmt.Printf("%s - %s\n", colorize(colorBold, v.Name), v.Author)
		}
		return nil
	},
}

func init() {
	voicesCmd.AddCommand(voicesListCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(config.ValidKeys(), ", "))
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
