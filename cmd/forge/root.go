package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forge",
		Short: "Scaffold and edit a small web project",
		Long: `Forge keeps one web project in a local store. Create it from a template,
edit its files with automatic backups, patch marked regions, then check and
export it.

Settings come from forge.yaml, FORGE_* environment variables and flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.open,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "path to forge.yaml")
	flags.String("data-dir", "", "directory holding the project store (default .forge)")
	flags.String("backend", "", "store backend: json, sqlite or memory")
	flags.String("log-level", "", "debug, info, warn or error")
	for key, name := range map[string]string{"data_dir": "data-dir", "store.backend": "backend", "log.level": "log-level"} {
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}

	cmd.AddCommand(
		newNewCmd(c),
		newTemplatesCmd(c),
		newInfoCmd(c),
		newClearCmd(c),
		newLsCmd(c),
		newCatCmd(c),
		newCreateCmd(c),
		newWriteCmd(c),
		newRmCmd(c),
		newMvCmd(c),
		newPatchCmd(c),
		newRegionsCmd(c),
		newBackupsCmd(c),
		newRestoreCmd(c),
		newManifestCmd(c),
		newSmokeCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newLogCmd(c),
	)
	return cmd
}
