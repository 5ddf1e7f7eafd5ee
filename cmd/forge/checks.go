package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-forge/internal/forge"

	"github.com/spf13/cobra"
)

var errSmokeFailed = errors.New("smoke tests failed")

func newManifestCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Rebuild manifest.json and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := c.store().BuildManifest()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
}

func newSmokeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Run the smoke tests; exits non-zero when any fails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results := c.store().RunSmokeTests()
			table := newTable(cmd.OutOrStdout(), "Check", "Result", "Detail")
			for _, r := range results {
				table.Append([]string{r.Name, passFail(r.Passed), r.Detail})
			}
			table.Render()

			if !forge.Passed(results) {
				return errSmokeFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), passStyle.Render("All smoke tests passed"))
			return nil
		},
	}
}
