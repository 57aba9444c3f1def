package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/phrazzld/deckpack/internal/app"
	"github.com/phrazzld/deckpack/internal/config"
	"github.com/phrazzld/deckpack/internal/platform/logger"
	"github.com/phrazzld/deckpack/internal/service"
	"github.com/spf13/cobra"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	appOnce sync.Once
	app     *app.Application
	appErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose}
}

// ensureApp loads configuration and wires the application on first use.
func (c *commandContext) ensureApp(cmd *cobra.Command) (*app.Application, error) {
	c.appOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.LoadFile(path)
		if err != nil {
			c.appErr = err
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Server.LogLevel = "debug"
		}
		l, err := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = app.New(cmd.Context(), cfg, l)
	})
	return c.app, c.appErr
}

func (c *commandContext) withService(cmd *cobra.Command, fn func(*service.DeckService) error) error {
	a, err := c.ensureApp(cmd)
	if err != nil {
		return err
	}
	return fn(a.Service)
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
	}
}

// printOutcome reports an outcome and turns failures into a non-zero exit.
func printOutcome(cmd *cobra.Command, o service.Outcome) error {
	if o.Success {
		fmt.Fprintln(cmd.OutOrStdout(), o.Message)
		return nil
	}
	if o.RequiresConfirmation {
		return fmt.Errorf("%s (rerun with --yes)", o.Message)
	}
	return fmt.Errorf("%s", o.Message)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
