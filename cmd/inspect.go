package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/somc-project/somc/internal/config"
	"github.com/somc-project/somc/internal/loader"
)

// inspectOutput is the JSON-schema-shaped output of the inspect command.
type inspectOutput struct {
	Stats     loader.Stats `json:"stats"`
	Selector  string       `json:"selector,omitempty"`
	Found     bool         `json:"found"`
	RecordKind string      `json:"record_kind,omitempty"`
}

// NewInspectCmd creates the inspect subcommand: loads a compiled
// artifact through the loader and reports its stats, optionally
// resolving a single selector's record for a spot check (§4.8).
func NewInspectCmd(reader config.FileReader) *cobra.Command {
	var selector string
	var jsonMode bool

	cmd := &cobra.Command{
		Use:          "inspect <binary>",
		Short:        "Inspect a compiled BSOM artifact",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, reader, args[0], selector, jsonMode)
		},
	}

	cmd.Flags().StringVar(&selector, "selector", "", "look up a single selector's record by hash")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "print the inspection result as JSON")

	return cmd
}

func runInspect(cmd *cobra.Command, reader config.FileReader, path, selector string, jsonMode bool) error {
	ctx := cmd.Context()

	data, err := reader.ReadFile(ctx, path)
	if err != nil {
		return &ExitCodeError{Code: 2, Err: fmt.Errorf("reading artifact %s: %w", path, err)}
	}

	l, err := loader.Load(data)
	if err != nil {
		return &ExitCodeError{Code: 2, Err: fmt.Errorf("loading artifact: %w", err)}
	}

	out := inspectOutput{Stats: l.Stats()}

	if selector != "" {
		out.Selector = selector
		if rec, ok := l.GetStatic(selector); ok {
			out.Found = true
			out.RecordKind = "static"
			_ = rec
		} else if rec, ok := l.GetDynamic(selector); ok {
			out.Found = true
			out.RecordKind = dynamicRecordKind(rec)
		}
	}

	if jsonMode {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
			return &ExitCodeError{Code: 2, Err: fmt.Errorf("encoding output: %w", err)}
		}
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "file size: %d bytes\n", out.Stats.FileSize)
	fmt.Fprintf(w, "pool entries: %d\n", out.Stats.PoolEntries)
	fmt.Fprintf(w, "static records: %d\n", out.Stats.StaticCount)
	fmt.Fprintf(w, "indexed dynamic records: %d\n", out.Stats.IndexedDynamicCount)
	fmt.Fprintf(w, "parse time: %s\n", out.Stats.ParseTime)
	if selector != "" {
		if out.Found {
			fmt.Fprintf(w, "selector %q: found (%s)\n", selector, out.RecordKind)
		} else {
			fmt.Fprintf(w, "selector %q: not found\n", selector)
		}
	}
	return nil
}

func dynamicRecordKind(rec any) string {
	switch rec.(type) {
	case *loader.BoundaryMarkerRecord:
		return "boundary_marker"
	case *loader.NondeterministicRecord:
		return "nondeterministic"
	default:
		return "unknown"
	}
}
