package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/repo/profile"
	"github.com/identity-platform/profile-saga/internal/domain/repo/projectionstate"
	"github.com/identity-platform/profile-saga/internal/eventstore"
	"github.com/identity-platform/profile-saga/internal/factory"
	"github.com/identity-platform/profile-saga/internal/projection"
)

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Replay the event store onto the user profile read model",
	Run: func(cmd *cobra.Command, args []string) {
		run("project", project)
	},
}

func project(ctx context.Context, rt *runtime) error {
	db, closeDB, err := factory.OpenSQLite(ctx, rt.conf.EventStore.Path)
	if err != nil {
		return err
	}

	rt.addCloser(closeDB)

	store, err := eventstore.NewSQLiteClient(ctx, db, rt.clock)
	if err != nil {
		return fmt.Errorf("failed to create event store: %w", err)
	}

	states, err := projectionstate.NewSQLiteRepo(ctx, db, rt.conf.Projection.Name)
	if err != nil {
		return err
	}

	valkeyClient, closeValkey, err := factory.CreateValkeyClient(ctx, rt.conf.Valkey)
	if err != nil {
		return err
	}

	rt.addCloser(closeValkey)

	publisher, err := rt.publisher()
	if err != nil {
		return err
	}

	health, err := projection.NewHealth(rt.registry)
	if err != nil {
		return err
	}

	profiles := projection.NewProfileProjection(profile.NewValkeyRepo(valkeyClient, rt.conf.Valkey.ProfilePrefix), publisher).WithLogger(rt.logger)

	engine, err := projection.NewEngine(projection.OptionsFrom(rt.conf.Projection), states, profiles, health, rt.clock, rt.registry)
	if err != nil {
		return err
	}

	engine = engine.WithLogger(rt.logger)

	start, err := engine.StartPosition(ctx)
	if err != nil {
		return fmt.Errorf("failed to read the projection position: %w", err)
	}

	// Event store options follow the config file
	reloader := projection.NewReloader(rt.conf.EventStore).WithLogger(rt.logger)

	watcher := config.NewWatcher().WithLogger(rt.logger)
	go reloader.Run(ctx, watcher)
	watcher.Start()

	subscription := eventstore.NewSubscription(store, engine, reloader, rt.clock).WithLogger(rt.logger)

	return rt.serve(ctx, health, func(ctx context.Context) error {
		return subscription.Run(ctx, start)
	})
}

func init() {
	rootCmd.AddCommand(projectCmd)
}
