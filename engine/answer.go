package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/janus-kgraph/kgraph"
)

// Answer is the formatted final result of a program: either a list of
// strings or a single scalar rendered as one string.
type Answer struct {
	Values []string
	IsList bool
}

// formatAnswer renders the final memory slot. Lists emit their elements'
// string forms; scalars emit one string. A trailing entity bundle renders
// as its id list.
func formatAnswer(final any) *Answer {
	switch v := final.(type) {
	case []string:
		return &Answer{Values: v, IsList: true}
	case []kgraph.Value:
		out := make([]string, len(v))
		for i, val := range v {
			out[i] = val.String()
		}
		return &Answer{Values: out, IsList: true}
	case Bundle:
		return &Answer{Values: append([]string(nil), v.IDs...), IsList: true}
	case string:
		return &Answer{Values: []string{v}}
	case Verdict:
		return &Answer{Values: []string{string(v)}}
	case int:
		return &Answer{Values: []string{strconv.Itoa(v)}}
	case nil:
		return &Answer{Values: []string{""}}
	}
	return &Answer{Values: []string{fmt.Sprint(final)}}
}

// String renders the answer for plain output, one element per line.
func (a *Answer) String() string {
	return strings.Join(a.Values, "\n")
}

// Table renders the answer as a markdown table with a row count.
func (a *Answer) Table() string {
	sb := &strings.Builder{}
	table := tablewriter.NewTable(sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment([]tw.Align{tw.AlignNone}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"answer"})
	for _, v := range a.Values {
		table.Append([]string{v})
	}
	table.Render()
	sb.WriteString(fmt.Sprintf("\n_%d rows_\n", len(a.Values)))
	return sb.String()
}

// summarize renders a step result for trace events.
func summarize(result any) string {
	switch v := result.(type) {
	case Bundle:
		if v.HasFacts() {
			return fmt.Sprintf("bundle(%d ids, %d facts)", len(v.IDs), len(v.Facts))
		}
		return fmt.Sprintf("bundle(%d ids)", len(v.IDs))
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	case []kgraph.Value:
		parts := make([]string, len(v))
		for i, val := range v {
			parts[i] = val.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return v
	case Verdict:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case nil:
		return "-"
	}
	return fmt.Sprint(result)
}
