package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/stackup-sh/stackup/internal/bootstrap"
)

func newDownCommand(i *do.Injector) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Tear down the running stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap.NewApp(i)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return a.Down(ctx)
		},
	}
}
