package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oceanbase/tiermem-go/internal/replay"
	"github.com/oceanbase/tiermem-go/pkg/core"
)

func init() {
	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Run a YAML replay script against a fresh engine",
		Args:  cobra.ExactArgs(1),
		Run:   runReplay,
	}

	RootCmd.AddCommand(cmd)
}

func runReplay(cmd *cobra.Command, args []string) {
	script, err := replay.Load(args[0])
	if err != nil {
		exitErr("load script", err)
	}

	results, err := replay.Run(script)
	if err != nil {
		exitErr("replay", err)
	}

	if formatFlag == "text" {
		writeResultsText(cmd.OutOrStdout(), results)
		return
	}
	if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
		exitErr("encode results", err)
	}
}

func writeJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func writeResultsText(out io.Writer, results []replay.StepResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Index, r.Op, r.Now.Format("2006-01-02T15:04:05Z07:00"), summarize(r))
		for _, m := range r.Memories {
			fmt.Fprintf(w, "\t\t%d\t%s %s imp=%.2f hits=%d %v\n",
				m.ID, m.Tier, m.Kind, m.Importance, m.RetrievalCount, m.Content)
		}
	}
	_ = w.Flush()
}

func summarize(r replay.StepResult) string {
	switch {
	case r.Error != "":
		return "error: " + r.Error
	case r.ID != 0:
		return fmt.Sprintf("id=%d", r.ID)
	case r.Stats != nil:
		return statsLine(r.Stats)
	case r.Consolidation != nil:
		c := r.Consolidation
		return fmt.Sprintf("promoted=%d skipped=%d evicted_short=%d evicted_long=%d",
			c.Promoted, c.Skipped, c.EvictedShortTerm, c.EvictedLongTerm)
	case r.Op == replay.OpRetrieve:
		return fmt.Sprintf("%d results", len(r.Memories))
	}
	return ""
}

func statsLine(s *core.Stats) string {
	return fmt.Sprintf("short=%d (%.2f) long=%d (%.2f) total=%d",
		s.ShortTermCount, s.CapacityUsage.ShortTerm,
		s.LongTermCount, s.CapacityUsage.LongTerm,
		s.TotalCount)
}
