package systems

import (
	"strconv"
	"strings"
	"text/tabwriter"
)

// Table renders the registry as right-aligned plain-text columns, one row per
// record, in registry order.
func Table(reg Registry) string {
	if len(reg) == 0 {
		return "(no systems)"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 1, ' ', tabwriter.AlignRight)
	_, _ = w.Write([]byte("name\tstatus\tcpu\tmemory\t\n"))
	for _, rec := range reg {
		row := rec.Name + "\t" + string(rec.Status) + "\t" + formatNumber(rec.CPU) + "\t" + formatNumber(rec.Memory) + "\t\n"
		_, _ = w.Write([]byte(row))
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
