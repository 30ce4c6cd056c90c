package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/glustolibs/go-gd2/pkg/gd2"
	"github.com/glustolibs/go-gd2/pkg/gd2log"
	"github.com/glustolibs/go-gd2/pkg/harness"
	"github.com/glustolibs/go-gd2/pkg/remote"
)

const defaultLogFile = "/tmp/gd2ctl.log"

var (
	configPath string
	logFile    string
	logLevel   string
	askSecret  bool

	logger  *gd2log.Logger
	cluster *harness.Cluster
	runner  *remote.SSHRunner
)

// Execute runs the gd2ctl command tree.
func Execute() error {
	root := &cobra.Command{
		Use:           "gd2ctl",
		Short:         "Manage a glusterd2 cluster",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := gd2log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger, err = gd2log.New(gd2log.Config{Path: logFile, Level: level})
			if err != nil {
				return err
			}
			slog.SetDefault(logger.Logger)

			if cmd.Name() == "version" {
				return nil
			}

			cfg, err := harness.Load(configPath)
			if err != nil {
				return err
			}

			var auth []ssh.AuthMethod
			if cfg.SSH.KeyFile != "" {
				method, err := remote.AuthFromPrivateKeyFile(cfg.SSH.KeyFile)
				if err != nil {
					return err
				}
				auth = append(auth, method)
			}
			runner = remote.NewSSHRunner(remote.Config{
				User: cfg.SSH.User,
				Auth: auth,
				Port: cfg.SSH.Port,
			})

			var opts []gd2.Option
			if secret, err := readSecret(); err != nil {
				return err
			} else if secret != nil {
				opts = append(opts, gd2.WithSecret(secret))
			}

			cluster, err = harness.New(cfg, runner, opts...)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if runner != nil {
				runner.Close()
			}
			if logger != nil {
				logger.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "cluster config file")
	root.PersistentFlags().StringVarP(&logFile, "log", "l", defaultLogFile, "log file location")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	root.PersistentFlags().BoolVar(&askSecret, "ask-secret", false, "prompt for the REST signing secret instead of reading the auth file on the node")

	root.AddCommand(peerCmd(), volumeCmd(), snapshotCmd(), deviceCmd(), glusterdCmd(), mountCmd(), umountCmd(), versionCmd())
	return root.Execute()
}

// readSecret returns a static signing secret when the user asked for one,
// prompting on the terminal without echo.
func readSecret() ([]byte, error) {
	if !askSecret {
		return nil, nil
	}
	fmt.Fprint(os.Stderr, "glusterd2 REST secret: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}
	return secret, nil
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 120*time.Second)
}
