package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/tagpool/pkg/config"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	v := config.NewViper()
	var envFile string

	root := &cobra.Command{
		Use:   "tagpool",
		Short: "tagpool - typed object pools with tag routing",
		Long: `tagpool manages named pools of reusable objects. Pools grow lazily when
empty and recycle released objects oldest first.

This command validates registry configuration files and runs spawn/release
simulations against them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("failed to load env file %s: %w", envFile, err)
				}
				return nil
			}
			_ = godotenv.Load() // Ignore error if .env doesn't exist
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file before reading configuration")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "tagpool v%s\n", version)
			fmt.Fprintf(w, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newValidateCmd(v))
	root.AddCommand(newSimulateCmd(v))
	return root
}

// loadConfig reads path, applies TAGPOOL_* and flag overrides and validates
// the result.
func loadConfig(v *viper.Viper, path string) (*config.RegistryConfig, error) {
	cfg, err := config.LoadRegistryConfig(path)
	if err != nil {
		return nil, err
	}
	config.ApplyOverrides(v, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config after overrides: %w", err)
	}
	return cfg, nil
}

func newValidateCmd(v *viper.Viper) *cobra.Command {
	var configFile, writeFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a registry configuration file",
		Long: `Validate loads a registry configuration, applies environment overrides
and checks that every pool has a unique, non-empty tag.

With --write the effective configuration, defaults and overrides included,
is saved as YAML.

Example:
  tagpool validate --config arena.yaml
  tagpool validate --config arena.yaml --write effective.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configFile)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d pools\n", cfg.Name, len(cfg.Pools))
			for _, p := range cfg.Pools {
				fmt.Fprintf(w, "  - %s (prototype %s, prewarm %d)\n", p.Tag, p.PrototypeName(), p.Prewarm)
			}
			if writeFile != "" {
				if err := config.Save(writeFile, cfg); err != nil {
					return err
				}
				fmt.Fprintf(w, "wrote %s\n", writeFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to registry configuration YAML file (required)")
	cmd.Flags().StringVarP(&writeFile, "write", "w", "", "Save the effective configuration to this YAML file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
