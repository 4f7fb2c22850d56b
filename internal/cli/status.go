package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"apsconnect/internal/mapping"
	"apsconnect/internal/oauth"
)

// bandLabel renders a validity band as a colored status word.
func bandLabel(band oauth.ValidityBand) string {
	switch band {
	case oauth.BandLongLived:
		return text.FgGreen.Sprint("Valid")
	case oauth.BandExpiringSoon:
		return text.FgYellow.Sprint("Expiring soon")
	default:
		return text.FgRed.Sprint("Expired")
	}
}

// formatRemaining renders a remaining-validity duration for display,
// rounded to the second.
func formatRemaining(remaining time.Duration) string {
	if remaining <= 0 {
		return "-"
	}
	return remaining.Round(time.Second).String()
}

// PrintTokenStatus renders the cached token's status. The token value
// itself is never printed.
func PrintTokenStatus(w io.Writer, environment string, rec *oauth.TokenRecord, now time.Time) {
	fmt.Fprintf(w, "Environment:  %s\n", environment)

	if rec == nil {
		fmt.Fprintf(w, "Status:       %s\n", text.FgYellow.Sprint("Not authenticated"))
		fmt.Fprintln(w, "\nRun: apsconnect auth login")
		return
	}

	remaining := oauth.RemainingValidity(rec, now)
	band := oauth.BandFor(remaining)

	fmt.Fprintf(w, "Status:       %s\n", bandLabel(band))
	fmt.Fprintf(w, "Token type:   %s\n", rec.TokenType)
	if !rec.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "Expires:      %s (%s remaining)\n",
			rec.ExpiresAt.Format(time.RFC3339), formatRemaining(remaining))
	}
	fmt.Fprintf(w, "Refresh:      %s\n", yesNo(rec.RefreshToken != ""))
	if rec.Scope != "" {
		fmt.Fprintf(w, "Scope:        %s\n", rec.Scope)
	}

	if band == oauth.BandExpired {
		fmt.Fprintln(w, "\nRun: apsconnect auth login")
	}
}

// PrintMappingStats renders mapping store statistics as a plain table.
func PrintMappingStats(w io.Writer, stats mapping.Statistics) {
	fmt.Fprintf(w, "Mappings:     %d\n", stats.TotalMappings)
	fmt.Fprintf(w, "File:         %s\n", stats.FilePath)
	if !stats.LastUpdated.IsZero() {
		fmt.Fprintf(w, "Last updated: %s\n", stats.LastUpdated.Format(time.RFC3339))
	}

	if len(stats.ElementTypes) == 0 {
		return
	}

	fmt.Fprintln(w)
	table := NewPlainTableWriter(w)
	table.SetHeaders([]string{"Element Type", "Count"})

	types := make([]string, 0, len(stats.ElementTypes))
	for name := range stats.ElementTypes {
		types = append(types, name)
	}
	sort.Strings(types)
	for _, name := range types {
		table.AppendRow([]string{name, fmt.Sprintf("%d", stats.ElementTypes[name])})
	}
	table.Render()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
