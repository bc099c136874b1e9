package cli

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ambiyansyah-risyal/corkboard"
)

// CallCmd creates the call command.
func CallCmd(env *Env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "call <endpoint> [name=value...]",
		Short: "Perform one API call and print the response",
		Long: `Perform one API call and print the response body.

The call waits out the endpoint's minimum interval and backs off on 429
responses; each wait is reported on stderr. Endpoints with a reject policy
fail instead of waiting. Run 'corkboard endpoints' for the list.`,
		Example: `  corkboard call posts/recent count=5
  corkboard call posts/add url=https://example.com description=Example
  corkboard call tags/get --output yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint, ok := corkboard.ParseEndpoint(args[0])
			if !ok {
				return fmt.Errorf("%w: %q (run 'corkboard endpoints')", ErrUnknownEndpoint, args[0])
			}
			params, err := ParseParams(args[1:])
			if err != nil {
				return err
			}
			format, err := ParseOutputFormat(output)
			if err != nil {
				return err
			}

			sess, err := openSession(cmd, env)
			if err != nil {
				return err
			}
			defer sess.Close()

			client, err := sess.client()
			if err != nil {
				return err
			}

			ctx := corkboard.WithContextWaitObserver(cmd.Context(), func(ev corkboard.WaitEvent) {
				fmt.Fprintf(env.Stderr, "waiting %s before %s (%s)\n", ev.Wait.Round(time.Millisecond), ev.Endpoint, ev.Reason)
			})

			out, err := client.Raw(ctx, endpoint, params)
			if err != nil {
				sess.logger.Debug().Str("endpoint", endpoint.String()).Err(err).Msg("Call failed")
				return err
			}
			return writeOutcome(env.Stdout, out, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(OutputJSON), "output format: json or yaml")

	return cmd
}

// ParseParams turns name=value arguments into query parameters. A name may
// repeat; an empty value is allowed.
func ParseParams(args []string) (url.Values, error) {
	params := url.Values{}
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q (expected name=value)", ErrInvalidParam, arg)
		}
		params.Add(name, value)
	}
	return params, nil
}
