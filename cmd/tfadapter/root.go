package cmd

import (
	// Subcommands
	inspect "github.com/cozy-creator/tf-adapter/cmd/tfadapter/inspect"
	run "github.com/cozy-creator/tf-adapter/cmd/tfadapter/run"
	"github.com/cozy-creator/tf-adapter/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = &cobra.Command{
	Use:   "tfadapter",
	Short: "npy gateway for TensorFlow Serving",
	Long:  "Accepts application/x-npy prediction requests, forwards them to a TensorFlow Serving REST backend and adapts the response to the caller's Accept header",

	SilenceUsage: true,

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		config.SetDefaults(v)
		config.ConfigureEnv(v)

		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		// Load config and env files
		return config.LoadEnvAndConfigFiles(v)
	},
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("config-file", "", "Path to a YAML config file")
	pflags.String("env-file", "", "Path to a .env file")

	viper.BindPFlag("config_file", pflags.Lookup("config-file"))
	viper.BindPFlag("env_file", pflags.Lookup("env-file"))

	Cmd.AddCommand(run.Cmd, inspect.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
