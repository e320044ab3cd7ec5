package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/identity-platform/profile-saga/internal/bus"
	"github.com/identity-platform/profile-saga/internal/command"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/repo/archive"
	sagarepo "github.com/identity-platform/profile-saga/internal/domain/repo/saga"
	"github.com/identity-platform/profile-saga/internal/eventstore"
	"github.com/identity-platform/profile-saga/internal/factory"
	"github.com/identity-platform/profile-saga/internal/saga"
)

// orchestrateCmd represents the orchestrate command
var orchestrateCmd = &cobra.Command{
	Use:   "orchestrate",
	Short: "Run the command sagas: validate commands and append their events to the event store",
	Run: func(cmd *cobra.Command, args []string) {
		run("orchestrate", orchestrate)
	},
}

func orchestrate(ctx context.Context, rt *runtime) error {
	// Event store
	db, closeDB, err := factory.OpenSQLite(ctx, rt.conf.EventStore.Path)
	if err != nil {
		return err
	}

	rt.addCloser(closeDB)

	store, err := eventstore.NewSQLiteClient(ctx, db, rt.clock)
	if err != nil {
		return fmt.Errorf("failed to create event store: %w", err)
	}

	// Archive of deleted users
	s3Client, err := factory.CreateS3Client(ctx, rt.conf.Archive)
	if err != nil {
		return fmt.Errorf("failed to create archive client: %w", err)
	}

	archiveWriter := archive.NewS3Writer(s3Client, rt.conf.Archive.Bucket, rt.conf.Archive.KeyPrefix)

	// Saga instances
	valkeyClient, closeValkey, err := factory.CreateValkeyClient(ctx, rt.conf.Valkey)
	if err != nil {
		return err
	}

	rt.addCloser(closeValkey)

	publisher, err := rt.publisher()
	if err != nil {
		return err
	}

	// Commands
	storePublisher := command.NewStoreEventPublisher(store).WithLogger(rt.logger)
	publishers := command.NewPublisherFactory(storePublisher).
		Register(entity.EventUserDeleted, command.NewArchivingEventPublisher(storePublisher, store, archiveWriter, rt.clock).WithLogger(rt.logger))

	registry := command.NewUserRegistry(command.NewValidate(), rt.clock, store)
	rt.logger.V(1).Info("Commands registered", "commands", registry.Names())

	machine := saga.NewMachine(registry, rt.conf, publishers, saga.NewPublishLock()).WithLogger(rt.logger)

	handler, err := saga.NewHandler(machine, sagarepo.NewValkeyRepo(valkeyClient, rt.conf.Valkey.SagaTTL), publisher, rt.conf.Retry, rt.registry)
	if err != nil {
		return err
	}

	router := handler.WithLogger(rt.logger).Register(bus.NewRouter().IgnoreUnknown())

	runner, err := rt.consumer(ctx, router)
	if err != nil {
		return err
	}

	return rt.serve(ctx, nil, runner.Start)
}

func init() {
	rootCmd.AddCommand(orchestrateCmd)
}
