package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rdblue/avro/pkg/container"
	"github.com/rdblue/avro/pkg/datum"
	"github.com/rdblue/avro/pkg/schema"
)

// catCmd dumps the datums of a container file as JSON, one per line.
var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print a container file's values as JSON lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var readerSchema schema.Schema
		if schemaPath, _ := cmd.Flags().GetString("schema"); schemaPath != "" {
			schemaJSON, err := os.ReadFile(schemaPath)
			if err != nil {
				return fmt.Errorf("read reader schema: %w", err)
			}
			readerSchema, err = schema.ParseJSON(schemaJSON)
			if err != nil {
				return err
			}
		}

		reader, err := container.NewReader(container.ReaderConfig{
			Path:   args[0],
			Schema: readerSchema,
		})
		if err != nil {
			return err
		}
		defer reader.Close()

		out := cmd.OutOrStdout()
		for {
			d, err := reader.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			line, err := datum.ToJSON(d)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", line)
		}
	},
}

func init() {
	catCmd.Flags().String("schema", "", "Reader schema file (defaults to the file's writer schema)")
	rootCmd.AddCommand(catCmd)
}
