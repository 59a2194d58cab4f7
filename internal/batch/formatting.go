package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatResult renders a batch result in the requested format.
func FormatResult(res *Result, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(res)
	case "csv":
		return formatCSV(res)
	default: // text
		return formatText(res), nil
	}
}

// formatJSON formats the result as indented JSON.
func formatJSON(res *Result) (string, error) {
	bts, err := json.MarshalIndent(res, "", "  ")
	return string(bts), err
}

// formatCSV formats one row per asset.
func formatCSV(res *Result) (string, error) {
	rows := [][]string{
		{"asset_id", "status", "reason", "strings", "flagged", "output", "package"},
	}
	for _, r := range res.Results {
		rows = append(rows, []string{
			r.AssetID,
			string(r.Status),
			r.Reason,
			strconv.Itoa(r.Strings),
			strconv.Itoa(r.Flagged),
			r.OutputPath,
			r.PackagePath,
		})
	}
	for _, f := range res.Failures {
		rows = append(rows, []string{f.Asset, "failed", f.Error, "0", "0", "", ""})
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	w.Flush()
	return sb.String(), w.Error()
}

// formatText formats a human-readable summary.
func formatText(res *Result) string {
	var sb strings.Builder

	localized, noloc := 0, 0
	for _, r := range res.Results {
		switch r.Status {
		case "localized":
			localized++
			fmt.Fprintf(&sb, "%-24s localized  %d string(s)", r.AssetID, r.Strings)
			if r.Flagged > 0 {
				fmt.Fprintf(&sb, "  %d flagged", r.Flagged)
			}
			fmt.Fprintf(&sb, "  -> %s\n", r.OutputPath)
		default:
			noloc++
			fmt.Fprintf(&sb, "%-24s no-loc     %s\n", r.AssetID, r.Reason)
		}
	}
	for _, f := range res.Failures {
		fmt.Fprintf(&sb, "%-24s failed     %s\n", f.Asset, f.Error)
	}

	fmt.Fprintf(&sb, "\n%d localized, %d no-loc, %d failed in %s (%d workers)\n",
		localized, noloc, len(res.Failures), res.Duration.Round(time.Millisecond), res.Workers)
	return sb.String()
}
