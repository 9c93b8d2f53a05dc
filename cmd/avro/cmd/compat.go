package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rdblue/avro/pkg/schema"
)

// compatCmd checks whether data written under one schema can be read
// under another.
var compatCmd = &cobra.Command{
	Use:   "compat <writer.avsc> <reader.avsc>",
	Short: "Check writer/reader schema compatibility",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, err := loadSchema(args[0])
		if err != nil {
			return err
		}
		reader, err := loadSchema(args[1])
		if err != nil {
			return err
		}

		if schema.Match(writer, reader) {
			fmt.Fprintln(cmd.OutOrStdout(), "compatible")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "incompatible")
		os.Exit(1)
		return nil
	},
}

func loadSchema(path string) (schema.Schema, error) {
	schemaJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return schema.ParseJSON(schemaJSON)
}

func init() {
	rootCmd.AddCommand(compatCmd)
}
