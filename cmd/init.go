package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jdlms/fpa-forecast/internal/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  "Create the configuration directory and write a config.yaml with the default datasets and view",
	RunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	SilenceUsage: true,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config without asking")
	rootCmd.AddCommand(initCmd)
}

func initConfig(cmd *cobra.Command) error {
	path := flags.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get config directory: %w", err)
		}
		path = p
	}

	out := cmd.OutOrStdout()

	// Check if the config already exists
	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(out, "Config %s already exists. Do you want to overwrite it? (y/N): ", path)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if r := strings.TrimSpace(response); r != "y" && r != "Y" {
			fmt.Fprintln(out, "Config initialization cancelled.")
			return nil
		}
	}

	cfg := config.Default()
	if changed := cmd.Flags().Changed; changed("dataset") {
		cfg.Datasets = flags.datasets
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Write(path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Config %s initialized successfully!\n", path)
	fmt.Fprintf(out, "Datasets: %s\n", strings.Join(cfg.Datasets, ", "))
	return nil
}
