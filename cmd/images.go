package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bilgisen/picreel/internal/models"
)

func newAddCmd() *cobra.Command {
	var caption string
	var published bool
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add an image to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			id, err := a.Images.Add(cmd.Context(), data, caption, published)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "caption narrated over the image")
	cmd.Flags().BoolVar(&published, "published", false, "store the image as already published")
	return cmd
}

func newListCmd() *cobra.Command {
	var search, state string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored images newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.ImageFilter{Search: search}
			if state != "" {
				s, err := models.ParseImageState(state)
				if err != nil {
					return err
				}
				filter.State = &s
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			items, err := a.Images.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATE\tSIZE\tCREATED\tCAPTION")
			for _, rec := range items {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					rec.ID, rec.State, rec.Size, rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Caption)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive caption filter")
	cmd.Flags().StringVar(&state, "state", "", "pending or published")
	return cmd
}
