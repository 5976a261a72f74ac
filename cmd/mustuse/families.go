package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mustuse/internal/driver"
	"mustuse/internal/hier"
)

var familiesCmd = &cobra.Command{
	Use:   "families [flags] <file.mu.toml|file.mub|directory>",
	Short: "List override families and their effective classifications",
	Long: `Families prints every override-equivalence class of the merged
hierarchy together with its member declarations, explicit marks, the effective
classification and the declarations it originates from. Useful for debugging
why a particular call site is or is not flagged.`,
	Args: cobra.ExactArgs(1),
	RunE: runFamilies,
}

func init() {
	familiesCmd.Flags().String("format", "text", "output format (text|json)")
	familiesCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

type familyMemberPayload struct {
	Method string `json:"method"`
	Mark   string `json:"mark"`
}

type familyPayload struct {
	Family         uint32                `json:"family"`
	Classification string                `json:"classification"`
	Members        []familyMemberPayload `json:"members"`
	Origins        []string              `json:"origins,omitempty"`
}

func runFamilies(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	paths, err := driver.CollectInputs(args[0])
	if err != nil {
		return fmt.Errorf("failed to collect inputs: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no dump files found")
	}

	result, err := driver.Analyze(cmd.Context(), driver.Request{
		Paths:          paths,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	graph := result.Graph
	payloads := make([]familyPayload, 0, graph.NumFamilies())
	for fid := hier.FamilyID(1); int(fid) <= graph.NumFamilies(); fid++ {
		p := familyPayload{
			Family:         uint32(fid),
			Classification: result.Table.Classification(fid).String(),
		}
		for _, mid := range graph.FamilyMembers(fid) {
			p.Members = append(p.Members, familyMemberPayload{
				Method: graph.QualifiedName(mid),
				Mark:   graph.Method(mid).Mark.String(),
			})
		}
		for _, mid := range result.Table.Origins(fid) {
			p.Origins = append(p.Origins, graph.QualifiedName(mid))
		}
		payloads = append(payloads, p)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payloads)
	case "text":
		for _, p := range payloads {
			fmt.Fprintf(os.Stdout, "family #%d: %s\n", p.Family, p.Classification)
			for _, m := range p.Members {
				if m.Mark == "none" {
					fmt.Fprintf(os.Stdout, "  %s\n", m.Method)
					continue
				}
				fmt.Fprintf(os.Stdout, "  %s [%s]\n", m.Method, m.Mark)
			}
			for _, o := range p.Origins {
				fmt.Fprintf(os.Stdout, "  origin: %s\n", o)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
