package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newBackupsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "backups [path]",
		Short: "List backups, oldest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			backups, err := c.store().Backups(path)
			if err != nil {
				return err
			}
			table := newTable(cmd.OutOrStdout(), "Key", "Path", "Taken", "Size")
			for _, b := range backups {
				table.Append([]string{b.Key().String(), b.Path.String(), b.Timestamp.Format(time.RFC3339), byteSize(len(b.Content))})
			}
			table.Render()
			return nil
		},
	}
}

func newRestoreCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <key>",
		Short: "Write a backup back to its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store().Restore(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		},
	}
}
