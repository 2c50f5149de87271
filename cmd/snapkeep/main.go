package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snapkeep/snapkeep/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:   "snapkeep",
		Short: "LINE image archiver",
		Long:  "snapkeep receives LINE webhook events and archives image attachments to disk and object storage.",
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the webhook server",
			Run: func(cmd *cobra.Command, args []string) {
				runServe()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version.Version)
			},
		},
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
