package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/resource"
	"github.com/cristalexdent/clinicadmin/internal/transfer"
)

var templateFlags struct {
	format string
	out    string
	edit   bool
}

var templateCmd = &cobra.Command{
	Use:   "template <resource>",
	Short: "Generate an empty import template",
	Long: `Generate an empty template for a resource, to be filled in offline and
imported later with "clinicadmin import" or from the wizard.

JSON and Markdown templates are printed to stdout unless --out is given.
XLSX templates are always written to a file, <resource>-template.xlsx by
default. --edit writes the template and opens it in $EDITOR.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: resource.Names(),
	RunE:      runTemplate,
}

func init() {
	templateCmd.Flags().StringVarP(&templateFlags.format, "format", "f", "json", "Template format: json, md or xlsx")
	templateCmd.Flags().StringVarP(&templateFlags.out, "out", "o", "", "Output file (default: stdout, or <resource>-template.<ext>)")
	templateCmd.Flags().BoolVarP(&templateFlags.edit, "edit", "e", false, "Open the written template in $EDITOR")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := resource.Lookup(args[0])
	if err != nil {
		return err
	}
	format, err := transfer.ParseFormat(templateFlags.format)
	if err != nil {
		return err
	}
	if templateFlags.edit && format == transfer.FormatXLSX {
		return fmt.Errorf("xlsx templates cannot be edited in a text editor")
	}
	data, err := transfer.Template(res, format, locales(cfg))
	if err != nil {
		return err
	}

	out := templateFlags.out
	if out == "" && (format == transfer.FormatXLSX || templateFlags.edit) {
		out = transfer.Filename(res, format)
	}
	if out == "" {
		w := cmd.OutOrStdout()
		_, err := fmt.Fprint(w, syntaxHighlight(w, string(data), transfer.Filename(res, format)))
		return err
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	success(cmd.OutOrStdout(), "Template written to %s", out)

	if templateFlags.edit {
		return openInEditor(out)
	}
	return nil
}

// openInEditor runs $EDITOR on path attached to the terminal.
func openInEditor(path string) error {
	c, err := editor.Command("clinicadmin", path)
	if err != nil {
		return fmt.Errorf("failed to prepare editor: %w", err)
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	return nil
}
