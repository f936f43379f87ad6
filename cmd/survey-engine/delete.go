// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/survey-engine/internal/store"
	"github.com/pdiddy/survey-engine/internal/vectorstore"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [survey-id]",
	Short: "Remove a stored survey and its vector collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := store.NewStore(storeConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	survey, err := db.Load(ctx, args[0])
	if err != nil {
		return err
	}

	// Best effort, the vector store may be gone already.
	gateway := vectorstore.NewGateway(ctx, vectorStoreConfig(), logger)
	if !gateway.DeleteCollection(ctx, survey.Namespace()) {
		fmt.Fprintf(os.Stderr, "warning: vector collection %s was not removed\n", survey.Namespace())
	}

	if err := db.Delete(ctx, survey.ID); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Deleted survey %s\n", survey.ID)
	return nil
}
