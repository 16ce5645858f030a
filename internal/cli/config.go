package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oceanbase/tiermem-go/pkg/core"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective engine configuration",
		Long:  "Print the configuration built from TIERMEM_* environment variables, an .env file, or a JSON/YAML config file.",
		Run:   runConfig,
	}
	cmd.Flags().String("env-file", "", "Load variables from this .env file")
	cmd.Flags().StringP("file", "c", "", "Load a JSON or YAML config file instead of the environment")

	RootCmd.AddCommand(cmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	file, _ := cmd.Flags().GetString("file")

	config, err := loadConfig(envFile, file)
	if err != nil {
		exitErr("load config", err)
	}
	if err := config.Validate(); err != nil {
		exitErr("validate config", err)
	}

	if formatFlag == "text" {
		kinds := make([]string, len(config.SupportedKinds))
		for i, k := range config.SupportedKinds {
			kinds[i] = string(k)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "short_term_capacity: %d\nlong_term_capacity: %d\nsupported_kinds: %s\ncan_forget: %t\n",
			config.ShortTermCapacity, config.LongTermCapacity, strings.Join(kinds, ","), config.CanForget)
		return
	}
	if err := writeJSON(cmd.OutOrStdout(), config); err != nil {
		exitErr("encode config", err)
	}
}

func loadConfig(envFile, file string) (*core.Config, error) {
	switch {
	case file != "":
		switch strings.ToLower(filepath.Ext(file)) {
		case ".yaml", ".yml":
			return core.LoadConfigFromYAML(file)
		default:
			return core.LoadConfigFromJSON(file)
		}
	case envFile != "":
		return core.LoadConfigFromEnvFile(envFile)
	default:
		return core.LoadConfigFromEnv()
	}
}
