package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	imagehost "github.com/bitmark-inc/image-host"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// printRecords writes image records to w in the given output format
func printRecords(w io.Writer, format string, records []imagehost.ImageRecord) error {
	if records == nil {
		records = []imagehost.ImageRecord{}
	}

	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(records); err != nil {
			return err
		}
		return encoder.Close()
	case formatTable:
		return printTable(w, records)
	}

	return fmt.Errorf("unsupported output format: %s", format)
}

func printTable(w io.Writer, records []imagehost.ImageRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tASSET ID\tCREATED AT\tURL")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, r.AssetID, r.CreatedAt.Format(time.RFC3339), r.ImageURL)
	}
	return tw.Flush()
}
