package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/arcanaland/spellbook/internal/config"
	"github.com/arcanaland/spellbook/internal/store"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and an empty card document",
		Long: `Init writes a config file with the current settings, unless one exists,
and creates an empty card document at the store path, unless one exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if exists(a.configPath) {
				fmt.Fprintln(out, "Config file already exists at:", a.configPath)
			} else {
				if err := config.Write(a.configPath, a.cfg); err != nil {
					return err
				}
				fmt.Fprintln(out, "Config file initialized at:", a.configPath)
			}

			if exists(a.cfg.StorePath) {
				fmt.Fprintln(out, "Card document already exists at:", a.cfg.StorePath)
				return nil
			}
			empty, _ := store.NewCollection()
			if err := store.Save(empty, a.cfg.StorePath); err != nil {
				return err
			}
			fmt.Fprintln(out, "Card document initialized at:", a.cfg.StorePath)
			fmt.Fprintln(out, "Run 'spellbook cards add' to add cards, or 'spellbook serve' to serve them.")
			return nil
		},
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
