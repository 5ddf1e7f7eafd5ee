package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go-forge/internal/forge"

	"github.com/spf13/cobra"
)

// contentFlags is the shared way of passing file content: inline, from a
// file, or from stdin when neither is set.
type contentFlags struct {
	content string
	file    string
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.content, "content", "c", "", "content to store")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "read content from a file, or - for stdin")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
}

func (f *contentFlags) read(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("content") {
		return f.content, nil
	}
	src := f.file
	if src == "" {
		src = "-"
	}
	data, err := readSource(cmd, src)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readSource reads a local file, or stdin for "-".
func readSource(cmd *cobra.Command, src string) ([]byte, error) {
	if src == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}
	return data, nil
}

func newLsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List project files in store order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := c.store().Project(); !ok {
				return forge.ErrNoProject
			}
			table := newTable(cmd.OutOrStdout(), "Path", "Size", "Checksum")
			for _, f := range c.store().Files() {
				table.Append([]string{f.Path.String(), byteSize(len(f.Content)), forge.Checksum(f.Content)})
			}
			table.Render()
			return nil
		},
	}
}

func newCatCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, ok := c.store().Read(args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], forge.ErrFileNotFound)
			}
			_, err := io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
}

func newCreateCmd(c *cli) *cobra.Command {
	var f contentFlags
	cmd := &cobra.Command{
		Use:   "create <path>",
		Short: "Store a file, replacing any existing content without a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := f.read(cmd)
			if err != nil {
				return err
			}
			return c.store().Create(args[0], content)
		},
	}
	f.register(cmd)
	return cmd
}

func newWriteCmd(c *cli) *cobra.Command {
	var f contentFlags
	cmd := &cobra.Command{
		Use:   "write <path>",
		Short: "Replace a file, backing up its previous content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := f.read(cmd)
			if err != nil {
				return err
			}
			return c.store().Write(args[0], content)
		},
	}
	f.register(cmd)
	return cmd
}

func newRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Back up and remove a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.store().Delete(args[0])
		},
	}
}

func newMvCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <from> <to>",
		Short: "Rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.store().Rename(args[0], args[1])
		},
	}
}

func newPatchCmd(c *cli) *cobra.Command {
	var f contentFlags
	cmd := &cobra.Command{
		Use:   "patch <path> <region>",
		Short: "Replace the content of a marked region",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := f.read(cmd)
			if err != nil {
				return err
			}
			return c.store().ApplyPatch(args[0], args[1], content)
		},
	}
	f.register(cmd)
	return cmd
}

func newRegionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "regions <path>",
		Short: "List the patch regions in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, err := c.store().Regions(args[0])
			if err != nil {
				return err
			}
			if len(regions) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(regions, "\n"))
			}
			return nil
		},
	}
}
