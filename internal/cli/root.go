package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ambiyansyah-risyal/corkboard"
	"github.com/ambiyansyah-risyal/corkboard/internal/config"
)

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	"token":     "token",
	"base-url":  "base_url",
	"timeout":   "timeout",
	"log-level": "log.level",
	"log-file":  "log.file",
}

// session is the configuration and logger of one command invocation.
type session struct {
	env    *Env
	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
}

// NewRootCmd assembles the corkboard command tree.
func NewRootCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corkboard",
		Short: "Call the bookmarking API from the command line",
		Long: `corkboard performs single calls against the bookmarking API, honouring its
per-endpoint rate limits and backing off when the server answers 429.

Credentials come from corkboard.yaml, CORKBOARD_* environment variables or flags.`,
		Version:       corkboard.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default ./corkboard.yaml or <user config dir>/corkboard/corkboard.yaml)")
	pf.String("token", "", "API token in user:HEX form (env CORKBOARD_TOKEN)")
	pf.String("base-url", "", "API base URL (default "+corkboard.DefaultBaseURL+")")
	pf.Duration("timeout", 0, "per-request timeout (default 30s)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error, disabled")
	pf.String("log-file", "", "write logs to a rotating file instead of stderr")
	pf.BoolP("verbose", "v", false, "log client activity at debug level")

	cmd.AddCommand(CallCmd(env))
	cmd.AddCommand(EndpointsCmd(env))
	cmd.AddCommand(VersionCmd(env))

	return cmd
}

// openSession loads configuration, with flags overriding the environment
// and the config file, and sets up logging.
func openSession(cmd *cobra.Command, env *Env) (*session, error) {
	v := config.NewViper()
	flags := cmd.Flags()
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConfig, err)
			}
		}
	}

	configFile, _ := flags.GetString("config")
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	verbose, _ := flags.GetBool("verbose")
	logger, closer, err := newLogger(cfg.Log, env.Stderr, verbose)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if used := config.ConfigFileUsed(v); used != "" {
		logger.Debug().Str("file", used).Msg("Loaded configuration")
	}

	return &session{env: env, cfg: cfg, logger: logger, closer: closer}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}

// client builds an API client from the session configuration.
func (s *session) client() (*corkboard.Client, error) {
	opts := s.cfg.ClientOptions()
	opts = append(opts, corkboard.WithZerolog(s.logger))
	opts = append(opts, s.env.ClientOptions...)

	client := corkboard.New(s.cfg.Authentication(), opts...)
	if !client.IsValid() {
		return nil, client.ValidationError()
	}
	return client, nil
}
