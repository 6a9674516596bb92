package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinaaaquil/novels/store"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, logger)
		if err != nil {
			return err
		}
		defer db.Disconnect(context.Background())

		if err := db.EnsureIndexes(ctx); err != nil {
			return err
		}
		logger.Info("indexes ensured", "db", cfg.DBName)
		return nil
	},
}
