package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ambiyansyah-risyal/corkboard"
)

// EndpointsCmd creates the endpoints command.
func EndpointsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List supported endpoints and their rate limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(env.Stdout, renderEndpoints())
			return err
		},
	}
}

func renderEndpoints() string {
	policies := corkboard.DefaultEndpointPolicies()

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Endpoint", "Class", "Min interval", "When too soon"})

	for _, ep := range corkboard.Endpoints() {
		class := "default"
		policy, ok := policies[ep]
		if ok {
			class = ep.String()
		} else {
			policy = corkboard.DefaultPolicy
		}
		t.AppendRow(table.Row{ep.String(), class, policy.MinInterval.String(), policy.Mode.String()})
	}

	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d endpoints", len(corkboard.Endpoints()))})
	return t.Render()
}
