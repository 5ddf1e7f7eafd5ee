package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-forge/internal/forge"

	"github.com/spf13/cobra"
)

func newNewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "new <template> <name...>",
		Short: "Start a new project from a template, replacing the current one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args[1:], " ")
			p, err := c.store().NewProject(args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s) from %s with %d files\n", p.Name, p.Slug, p.Template, c.store().Len())
			return nil
		},
	}
}

func newTemplatesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available project templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := c.store().Registry()
			table := newTable(cmd.OutOrStdout(), "Name", "Files", "Description")
			for _, name := range registry.Names() {
				t, err := registry.Describe(name)
				if err != nil {
					return err
				}
				table.Append([]string{t.Name, strconv.Itoa(len(t.Files)), t.Description})
			}
			table.Render()
			return nil
		},
	}
}

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the active project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ok := c.store().Project()
			if !ok {
				return forge.ErrNoProject
			}
			out := cmd.OutOrStdout()
			field(out, "Name", p.Name)
			field(out, "Slug", p.Slug)
			field(out, "ID", p.ID)
			field(out, "Template", p.Template)
			field(out, "Version", p.Version)
			field(out, "Created", p.CreatedAt.Format(time.RFC3339))
			field(out, "Modified", p.ModifiedAt.Format(time.RFC3339))
			field(out, "Files", c.store().Len())
			backups, err := c.store().Backups("")
			if err != nil {
				return err
			}
			field(out, "Backups", len(backups))
			return nil
		},
	}
}

func newClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the project, its files and backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.store().Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared project")
			return nil
		},
	}
}

func newExportCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rebuild the manifest and write the project artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			artifact, err := c.store().Export()
			if err != nil {
				return err
			}
			data, err := forge.MarshalArtifact(artifact)
			if err != nil {
				return err
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if output == "" {
				output = c.store().ExportFilename()
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write artifact: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to %s\n", artifact.Files.Len(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "artifact path, or - for stdout (default <slug>.forge.json)")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <artifact>",
		Short: "Replace the project with an exported artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			artifact, err := forge.DecodeArtifact(data)
			if err != nil {
				return err
			}
			p, err := c.store().Import(artifact)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q with %d files\n", p.Name, c.store().Len())
			return nil
		},
	}
}

func newLogCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "log <note...>",
		Short: "Append a line to changelog.md",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.store().AppendChangelog(strings.Join(args, " "))
		},
	}
}
