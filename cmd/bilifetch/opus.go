package main

import (
	"github.com/spf13/cobra"

	"bilifetch/pkg/archiver"
)

// opusCmd represents the opus command
var opusCmd = &cobra.Command{
	Use:   "opus <uid>",
	Short: "Archive a user's opus documents",
	Long: `Archive the complete opus feed of a Bilibili user.

Opus documents are the platform's structured long-form posts. Each
document is resolved to its full detail, flattened to the same record
shape as a dynamics post, and stored in the same directory layout. A
document whose detail cannot be fetched is skipped with a warning; the
rest of the crawl continues.`,
	Example: `  # Archive a user's opus documents
  bilifetch opus 123456

  # Text and metadata only
  bilifetch opus 123456 --no-media`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runFetch(cmd, args, func(a *archiver.Archiver, uid uint64) error {
			return a.ArchiveOpus(uid)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(opusCmd)
	addFetchFlags(opusCmd)
}
