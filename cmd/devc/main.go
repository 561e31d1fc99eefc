package main

import (
	"context"
	"os"

	"github.com/devc/devc/pkg/cli"
	"github.com/devc/devc/pkg/config"
	devcerrors "github.com/devc/devc/pkg/errors"
)

func main() {
	factory := cli.NewLazyCommandFactory(config.NewViper())
	rootCmd := factory.RootCmd()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		devcerrors.PrintError(os.Stderr, err)
		os.Exit(devcerrors.ExitCode(err))
	}
}
