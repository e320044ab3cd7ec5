package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/identity-platform/profile-saga/internal/bus"
	"github.com/identity-platform/profile-saga/internal/collector"
	collectorrepo "github.com/identity-platform/profile-saga/internal/domain/repo/collector"
	"github.com/identity-platform/profile-saga/internal/factory"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Aggregate command and validation responses into composite responses",
	Run: func(cmd *cobra.Command, args []string) {
		run("collect", collect)
	},
}

func collect(ctx context.Context, rt *runtime) error {
	valkeyClient, closeValkey, err := factory.CreateValkeyClient(ctx, rt.conf.Valkey)
	if err != nil {
		return err
	}

	rt.addCloser(closeValkey)

	publisher, err := rt.publisher()
	if err != nil {
		return err
	}

	c, err := collector.NewCollector(collectorrepo.NewValkeyRepo(valkeyClient, rt.conf.Valkey.CollectorTTL), publisher, rt.clock, rt.conf.Retry, rt.registry)
	if err != nil {
		return err
	}

	router := c.WithLogger(rt.logger).Register(bus.NewRouter().IgnoreUnknown())

	runner, err := rt.consumer(ctx, router)
	if err != nil {
		return err
	}

	return rt.serve(ctx, nil, runner.Start)
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
