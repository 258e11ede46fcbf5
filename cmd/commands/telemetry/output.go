package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"netmonlabs/netmon/internal/aggregate"
	"netmonlabs/netmon/internal/domain"
)

// printJSON encodes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRows prints readings as a table with the dashboard's columns.
func printRows(w io.Writer, rows []domain.TelemetryRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tIP\tLOCATION\tSTATUS\tMETRIC\tVALUE\tANOMALY\tRECORDED AT")
	fmt.Fprintln(tw, "------\t--\t--------\t------\t------\t-----\t-------\t-----------")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.DeviceName,
			r.IPAddress,
			dash(r.LocationText()),
			aggregate.Classify(r.MetricValue),
			aggregate.ActionLabel(r),
			dash(r.MetricValue.Text()),
			aggregate.AnomalyLabel(r.MetricValue),
			dash(r.RecordedAt.Raw),
		)
	}
	return tw.Flush()
}

// seriesJSON is the JSON shape of `telemetry series`.
type seriesJSON struct {
	Status      aggregate.Series `json:"status"`
	Anomalies   aggregate.Series `json:"anomalies"`
	Performance aggregate.Series `json:"performance"`
}

// printSeries prints the three series side by side. They share buckets, so
// row i of each series has the same time.
func printSeries(w io.Writer, res aggregate.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tANOMALIES\tPERFORMANCE")
	fmt.Fprintln(tw, "----\t------\t---------\t-----------")
	for i, p := range res.Status {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			p.Time,
			formatNumber(p.Value),
			formatNumber(res.Anomalies[i].Value),
			formatNumber(res.Performance[i].Value),
		)
	}
	return tw.Flush()
}

// printSummary prints one line describing a snapshot.
func printSummary(w io.Writer, fetchedAt string, total int, res aggregate.Result) {
	fmt.Fprintf(w, "[%s] %d/%d rows  status %s  anomalies %s  performance %s\n",
		fetchedAt,
		len(res.Rows), total,
		last(res.Status), last(res.Anomalies), last(res.Performance),
	)
}

func last(s aggregate.Series) string {
	p, ok := s.Last()
	if !ok {
		return "-"
	}
	return formatNumber(p.Value)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
