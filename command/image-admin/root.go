package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	imagehost "github.com/bitmark-inc/image-host"
)

type imageEngine interface {
	List(ctx context.Context) ([]imagehost.ImageRecord, error)
	Rename(ctx context.Context, id, title string) (imagehost.ImageRecord, error)
	Delete(ctx context.Context, id string) (imagehost.ImageRecord, error)
}

type backend struct {
	store  imagehost.Store
	engine imageEngine
}

type openBackendFunc func(ctx context.Context) (*backend, error)

// adminCLI holds the state shared by the image-admin commands
type adminCLI struct {
	open    openBackendFunc
	out     io.Writer
	format  string
	backend *backend
}

func newAdminCLI(open openBackendFunc, out io.Writer) *adminCLI {
	return &adminCLI{
		open: open,
		out:  out,
	}
}

func (a *adminCLI) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image-admin",
		Short: "Maintain the image host store",
		Long: `Maintain the image records of the image host.

The store and cloudflare settings are read the same way the image api reads them,
from config files and IMAGE_HOST_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(a.format); err != nil {
				return err
			}

			if !needsBackend(cmd) {
				return nil
			}

			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			a.backend = b
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.backend == nil {
				return nil
			}
			return a.backend.store.Close(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.format, "format", "f", formatTable, "Output format (table, json, yaml)")

	cmd.AddCommand(a.migrateCmd())
	cmd.AddCommand(a.listCmd())
	cmd.AddCommand(a.renameCmd())
	cmd.AddCommand(a.deleteCmd())

	return cmd
}

// needsBackend reports whether cmd touches the store. Help and shell
// completion commands run without config or a database connection.
func needsBackend(cmd *cobra.Command) bool {
	if cmd.Run == nil && cmd.RunE == nil {
		return false
	}

	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}

	return !cmd.HasParent() || cmd.Parent().Name() != "completion"
}

func (a *adminCLI) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the image store schema and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.backend.store.Migrate(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(a.out, "image store migrated")
			return err
		},
	}
}

func (a *adminCLI) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all image records",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.backend.engine.List(cmd.Context())
			if err != nil {
				return err
			}

			return printRecords(a.out, a.format, records)
		},
	}
}

func (a *adminCLI) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change the title of an image",
		Long: `Change the title of an image. The image url and asset id are kept.

Examples:
  image-admin rename 65f1c0d2a4b3e9f1a2c3d4e5 "tabby cat"
  image-admin rename 65f1c0d2a4b3e9f1a2c3d4e5 ""`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := a.backend.engine.Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			return printRecords(a.out, a.format, []imagehost.ImageRecord{record})
		},
	}
}

func (a *adminCLI) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an image record and its hosted asset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := a.backend.engine.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printRecords(a.out, a.format, []imagehost.ImageRecord{record})
		},
	}
}
