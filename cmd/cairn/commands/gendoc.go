package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
)

var genDocOut string

var genDocCmd = &cobra.Command{
	Use:         "gen-doc",
	Short:       "Generate Markdown documentation for the CLI",
	Hidden:      true,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if genDocOut == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Pass --out <dir>")
		}

		if err := os.MkdirAll(genDocOut, paths.DefaultDirPerm); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		if err := doc.GenMarkdownTreeCustom(rootCmd, genDocOut, filePrepender, linkHandler); err != nil {
			return errors.Wrap(err, "generating markdown")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", genDocOut)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocOut, "out", "o", "", "output directory for documentation")
	rootCmd.AddCommand(genDocCmd)
}

// filePrepender adds front matter to each page: cairn_config_show.md gets
// the title "config show".
func filePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.ReplaceAll(strings.TrimPrefix(base, "cairn_"), "_", " ")
	if base == "cairn" {
		title = "cairn"
	}

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s"
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
