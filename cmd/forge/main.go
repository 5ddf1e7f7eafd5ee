// Command forge manages a single scaffolded project from the terminal. Every
// invocation restores the saved project, runs one command and saves it again.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go-forge/internal/app"
	"go-forge/internal/config"
	"go-forge/internal/forge"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli carries what every subcommand shares. app is opened lazily by the root
// command's PersistentPreRunE.
type cli struct {
	v          *viper.Viper
	configFile string
	stderr     io.Writer
	app        *app.App
}

// execute runs one command and returns the process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{v: config.New(), stderr: stderr}
	// Keep routine Info logs out of command output
	c.v.SetDefault("log.level", "warn")

	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if finishErr := c.finish(context.Background()); err == nil {
		err = finishErr
	}
	if err != nil {
		fmt.Fprintln(stderr, "forge:", describe(err))
		return 1
	}
	return 0
}

// open loads configuration and restores the saved project.
func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log, c.stderr)
	if err != nil {
		return err
	}
	c.app, err = app.New(cfg, logger)
	return err
}

// finish closes the store and flushes pending mirror writes, then reports
// any notices raised along the way.
func (c *cli) finish(ctx context.Context) error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	if mirrorErr := c.app.RunMirror(ctx); mirrorErr != nil && err == nil {
		err = mirrorErr
	}
	for _, n := range c.app.Store.Notices() {
		if n.Path != "" {
			fmt.Fprintf(c.stderr, "warning: %s %s: %s\n", n.Kind, n.Path, n.Error)
		} else {
			fmt.Fprintf(c.stderr, "warning: %s: %s\n", n.Kind, n.Error)
		}
	}
	c.app = nil
	return err
}

func (c *cli) store() *forge.Store {
	return c.app.Store
}

// describe adds a hint to errors a user can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, forge.ErrNoProject):
		return err.Error() + " (run 'forge new <template> <name>' first)"
	case errors.Is(err, forge.ErrUnknownTemplate):
		return err.Error() + " (run 'forge templates' to list them)"
	default:
		return err.Error()
	}
}
