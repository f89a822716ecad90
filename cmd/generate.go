package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bilgisen/picreel/internal/encode"
	"github.com/bilgisen/picreel/internal/generate"
	"github.com/bilgisen/picreel/internal/models"
)

func newArticleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "article <id>...",
		Short: "Build an HTML article from images in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			exp, err := a.Generator.GenerateArticle(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), exp.FilePath)
			return nil
		},
	}
}

func newVideoCmd() *cobra.Command {
	var orientation string
	cmd := &cobra.Command{
		Use:   "video <id>...",
		Short: "Render a narrated slideshow from images in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := models.ParseOrientation(orientation, "")
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			out := cmd.ErrOrStderr()
			last := -1
			exp, err := a.Generator.GenerateVideo(cmd.Context(), generate.VideoRequest{IDs: args, Orientation: o},
				func(phase encode.Phase, pct int) {
					if pct != last {
						last = pct
						fmt.Fprintf(out, "\r%-9s %3d%%", phase, pct)
					}
				})
			fmt.Fprintln(out)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), exp.FilePath)
			if exp.RemoteURL != "" {
				fmt.Fprintln(cmd.OutOrStdout(), exp.RemoteURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&orientation, "orientation", "", "landscape or portrait (default from config)")
	return cmd
}

func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <id>...",
		Short: "Push images to the publishing sink and mark them published",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			res, err := a.Publisher.Publish(cmd.Context(), args)
			if err != nil {
				return err
			}
			for i, id := range res.ImageIDs {
				if i < len(res.RecordIDs) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", id, res.RecordIDs[i])
				}
			}
			return nil
		},
	}
}
