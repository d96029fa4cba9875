/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bitacora-blog/apiserver/config"
	"github.com/bitacora-blog/apiserver/internal/db"
	"github.com/bitacora-blog/apiserver/internal/services"
	"github.com/bitacora-blog/apiserver/internal/storage"
	"github.com/bitacora-blog/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var exportKey string

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON snapshot of users and blogs to object storage",
	Long: `Write a JSON snapshot of users and active blogs to the configured
object storage backend (STORAGE_BACKEND=minio|gcs). Password digests are
never exported. Usage:

	bitacora export [--key snapshots/custom.json]
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := newLogger(cfg)

		exporter, closeFn, err := openExporter(cmd, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		key, err := exporter.Export(cmd.Context(), exportKey)
		if err != nil {
			return err
		}
		log.Info("snapshot exported", slog.String("key", key))
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var exportShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a summary of a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		exporter, closeFn, err := openExporter(cmd, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		snapshot, err := exporter.Load(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return fmt.Errorf("snapshot %q does not exist", args[0])
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "generated_at=%s users=%d blogs=%d\n",
			snapshot.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"), len(snapshot.Users), len(snapshot.Blogs))
		return nil
	},
}

var exportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		exporter, closeFn, err := openExporter(cmd, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		objects, err := exporter.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, obj := range objects {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n",
				obj.Key, obj.Size, obj.LastModified.UTC().Format("2006-01-02T15:04:05Z07:00"))
		}
		return nil
	},
}

var exportDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		exporter, closeFn, err := openExporter(cmd, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := exporter.Remove(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return fmt.Errorf("snapshot %q does not exist", args[0])
			}
			return err
		}
		return nil
	},
}

func openExporter(cmd *cobra.Command, cfg config.Config) (*services.Exporter, func(), error) {
	objects, err := storage.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, nil, errors.New("export requires STORAGE_BACKEND=minio or gcs")
		}
		return nil, nil, err
	}

	dbConn, err := db.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}

	exporter := services.NewExporter(store.NewUserRepository(dbConn), store.NewBlogRepository(dbConn), objects)
	return exporter, func() { _ = dbConn.Close() }, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportListCmd, exportShowCmd, exportDeleteCmd)
	exportCmd.Flags().StringVar(&exportKey, "key", "", "object key (default snapshots/<timestamp>.json)")
}
