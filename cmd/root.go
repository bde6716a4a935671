package cmd

import (
	"github.com/arcanaland/spellbook/internal/config"
	"github.com/arcanaland/spellbook/internal/logr"
	"github.com/arcanaland/spellbook/internal/store"
	gologr "github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCmd()

// app holds the settings shared by every command, resolved from flags,
// environment variables and the config file, in that order of precedence.
type app struct {
	configPath string
	storePath  string
	log        logr.Config

	cfg    *config.Config
	logger gologr.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "spellbook",
		Short: "Catalog of Magic: The Gathering cards",
		Long: `Spellbook keeps a catalog of Magic: The Gathering cards in a single JSON
document, and serves it over HTTP for reading and editing.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultConfigFilePath(), "Path to the config file")
	flags.StringVar(&a.storePath, "store", "", "Path to the card document (default from config)")
	logr.AddFlags(flags, &a.log)

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newCardsCmd(a))
	cmd.AddCommand(newShowCmd(a))
	cmd.AddCommand(newValidateCmd(a))
	cmd.AddCommand(newInitCmd(a))
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if err := setFlagsFromEnvVariables(flags); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if flags.Changed("store") {
		cfg.StorePath = a.storePath
	}
	if flags.Changed("v") {
		cfg.Log.Verbosity = a.log.Verbosity
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.log.Format
	}

	logger, err := logr.New(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.cfg.StorePath, store.WithLogger(a.logger))
}
