package main

import (
	"fmt"
	"mobileforms-service/internal/app/services/shared/document"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func patchCmd() *cobra.Command {
	var (
		fieldName string
		value     string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "patch FILE",
		Short: "Set one field of a form document",
		Long: `patch replaces the value of exactly one field in a form document and leaves every
other byte of the document alone. The document is rewritten in place unless --output is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return patchFile(afero.NewOsFs(), args[0], fieldName, value, output)
		},
	}

	cmd.Flags().StringVar(&fieldName, "field", "", "Field to set ("+strings.Join(fieldNames(), ", ")+")")
	cmd.Flags().StringVar(&value, "value", "", "New field value")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the patched document here instead of FILE")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func patchFile(fs afero.Fs, path, fieldName, value, output string) error {
	field, ok := document.ParseFieldLocator(fieldName)
	if !ok {
		return fmt.Errorf("unknown field %q, expected one of: %s", fieldName, strings.Join(fieldNames(), ", "))
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	patched, err := document.PatchField(raw, field, value)
	if err != nil {
		return err
	}

	if output == "" {
		output = path
	}
	return afero.WriteFile(fs, output, patched, 0o644)
}

func fieldNames() []string {
	names := make([]string, 0, len(document.Fields()))
	for _, field := range document.Fields() {
		names = append(names, field.String())
	}
	sort.Strings(names)
	return names
}
