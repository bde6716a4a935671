package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const EnvironmentVariablePrefix = "SPELLBOOK_"

// setFlagsFromEnvVariables sets each flag not given on the command line from
// an env variable whose name starts with `SPELLBOOK_`, e.g. --log-format from
// SPELLBOOK_LOG_FORMAT.
func setFlagsFromEnvVariables(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}
		envVar := flagToEnvVarName(f)
		if val, present := os.LookupEnv(envVar); present {
			if setErr := fs.Set(f.Name, val); setErr != nil {
				err = fmt.Errorf("invalid value for %s: %w", envVar, setErr)
			}
		}
	})
	return err
}

func flagToEnvVarName(f *pflag.Flag) string {
	return EnvironmentVariablePrefix + strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")
}
