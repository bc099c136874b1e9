package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ambiyansyah-risyal/corkboard"
)

// VersionCmd creates the version command.
func VersionCmd(env *Env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				_, err := fmt.Fprintln(env.Stdout, corkboard.GetVersion())
				return err
			}

			format, err := ParseOutputFormat(output)
			if err != nil {
				return err
			}
			info := corkboard.GetVersionInfo()
			if format == OutputYAML {
				return yaml.NewEncoder(env.Stdout).Encode(info)
			}
			enc := json.NewEncoder(env.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "print build metadata as json or yaml")
	return cmd
}
