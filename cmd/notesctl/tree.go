package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manuscriptos/manuscript/backend/go-services/internal/explorer"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/kv"
	"github.com/manuscriptos/manuscript/backend/go-services/internal/store"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [parent-id]",
		Short: "Print the folder tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parentID string
			if len(args) == 1 {
				parentID = args[0]
			}
			return withStore(cmd.Context(), func(s kv.Store) error {
				docs, lists := store.NewDocumentStore(s), store.NewListStore(s)
				out := cmd.OutOrStdout()
				return explorer.New(lists, docs).Walk(cmd.Context(), parentID, func(depth int, it explorer.Item) error {
					marker := "-"
					if it.IsFolder {
						marker = "+"
					}
					_, err := fmt.Fprintf(out, "%s%s %s (%s)\n", strings.Repeat("  ", depth), marker, it.Name, it.ID)
					return err
				})
			})
		},
	}
}
