package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"guestlint/internal/lint"
	"guestlint/internal/lintcfg"
	"guestlint/internal/lsp"
	"guestlint/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the guest lint language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")

	var cfg lint.Config
	overrides, _, err := lintcfg.Resolve(".")
	if err != nil {
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: ignoring lint config: %v\n", err)
		}
	} else {
		cfg.Overrides = overrides
	}

	linter, err := lint.New(cfg)
	if err != nil {
		return err
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Linter:  linter,
		Name:    "guestlint",
		Version: version.Plain,
	})
	if err := server.Run(); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
