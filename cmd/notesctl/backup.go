package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/backup"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
)

func newBackupCmd() *cobra.Command {
	var (
		output string
		upload bool
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export every record to a JSON snapshot",
		Long: `Export every record to a JSON snapshot.

The snapshot goes to stdout unless --output is given. With --upload it is
stored in the configured object storage bucket instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(s kv.Store) error {
				if upload {
					up, err := openUploader(ctx)
					if err != nil {
						return err
					}
					key, err := backup.Push(ctx, s, up)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), key)
					return nil
				}
				data, err := backup.Export(ctx, s)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				return os.WriteFile(output, data, 0o600)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snapshot to this file")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the snapshot to object storage")
	cmd.MarkFlagsMutuallyExclusive("output", "upload")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var (
		overwrite  bool
		fromBucket bool
	)
	cmd := &cobra.Command{
		Use:   "restore [file|snapshot-key]",
		Short: "Import a JSON snapshot",
		Long: `Import a JSON snapshot from a file, or with --from-bucket from object
storage (the latest snapshot when no key is given).

Existing records fail the restore unless --overwrite is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := backup.Options{Overwrite: overwrite}
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			if !fromBucket && arg == "" {
				return fmt.Errorf("restore needs a snapshot file or --from-bucket")
			}
			return withStore(ctx, func(s kv.Store) error {
				var (
					res backup.Result
					err error
				)
				if fromBucket {
					up, uerr := openUploader(ctx)
					if uerr != nil {
						return uerr
					}
					res, err = backup.Pull(ctx, s, up, arg, opts)
				} else {
					data, rerr := os.ReadFile(arg)
					if rerr != nil {
						return rerr
					}
					res, err = backup.Import(ctx, s, data, opts)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored %d records (%d created, %d replaced)\n", res.Created+res.Replaced, res.Created, res.Replaced)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace records that already exist")
	cmd.Flags().BoolVar(&fromBucket, "from-bucket", false, "read the snapshot from object storage")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Count stored documents and lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(s kv.Store) error {
				st, err := backup.Info(cmd.Context(), s)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "records:   %d\ndocuments: %d\nlists:     %d\n", st.Records, st.Documents, st.Lists)
				return nil
			})
		},
	}
}

func newPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to purge without --yes")
			}
			return withStore(cmd.Context(), func(s kv.Store) error {
				n, err := backup.Purge(cmd.Context(), s)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d records\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
