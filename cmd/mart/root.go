package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dwikikusuma/collegemart/pkg/config"
	"github.com/dwikikusuma/collegemart/pkg/logger"
)

// cli carries what every subcommand needs once flags and env are parsed.
type cli struct {
	out    io.Writer
	errOut io.Writer

	driver   string
	dir      string
	logLevel string

	cfg config.Config
	log *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "mart",
		Short: "Campus marketplace client",
		Long: `Browse the campus marketplace, keep a cart on this machine and serve
the local web UI.

The cart lives in local storage shared by every mart process on this
machine, so a badge or web UI started with 'mart serve' follows changes
made from the command line.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&c.driver, "storage", "", "storage driver: file, sqlite, bolt or memory (default from MART_STORAGE_DRIVER)")
	f.StringVar(&c.dir, "dir", "", "storage directory (default from MART_STORAGE_DIR)")
	f.StringVar(&c.logLevel, "log-level", "", "log level (default from LOG_LEVEL)")

	root.AddCommand(
		c.serveCmd(),
		c.cartCmd(),
		c.badgeCmd(),
		c.productsCmd(),
		c.loginCmd(),
		c.signupCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
	)
	return root
}

func (c *cli) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.driver != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(c.driver))
	}
	if c.dir != "" {
		cfg.StorageDir = c.dir
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	c.cfg = cfg

	// stdout is for command output only
	c.log = logger.New(logger.Options{
		Service: "mart",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  c.errOut,
	})
	return nil
}
