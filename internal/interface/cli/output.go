package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// printer 按--format输出：json原样输出用例结果，text输出表格
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: format}
}

func (p *printer) json() bool {
	return p.format == FormatJSON
}

func (p *printer) printJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// table 列之间至少两个空格
func (p *printer) table(header string, rows []string) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		fmt.Fprintln(tw, row)
	}
	return tw.Flush()
}
