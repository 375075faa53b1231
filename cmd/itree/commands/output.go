package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/labels"
)

type result struct {
	Query  string     `json:"query" yaml:"query"`
	Range  string     `json:"range" yaml:"range"`
	Labels labels.Set `json:"labels,omitempty" yaml:"labels,omitempty"`
}

func printResults(w io.Writer, format string, results []result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(results)
	case "table", "":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"QUERY", "RANGE", "LABELS"})
		for _, r := range results {
			t.AppendRow(table.Row{r.Query, r.Range, r.Labels.String()})
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
