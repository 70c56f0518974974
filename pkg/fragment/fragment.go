// Package fragment renders table grids as the minimal HTML accepted by the
// document service, and escapes cell text on the way in and out.
//
// Markup is emitted without inter-tag whitespace so that no stray text ends
// up inside a cell when the service parses the fragment back.
package fragment

import (
	"fmt"
	"html"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\r", "&#13;",
)

// EscapeText escapes the characters that would otherwise change the structure
// of a fragment, and carriage returns, which an HTML parser folds into line
// feeds. Quotes and non-ASCII text pass through untouched.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// UnescapeText reverses EscapeText and also decodes any other HTML entity the
// service may have produced.
func UnescapeText(s string) string {
	return html.UnescapeString(s)
}

// BuildTable returns an empty rowCount x columnCount table.
func BuildTable(rowCount, columnCount int) (string, error) {
	if rowCount <= 0 {
		return "", docerr.Invalid("build table", "rows", rowCount, docerr.ErrInvalidDimension)
	}
	if columnCount <= 0 {
		return "", docerr.Invalid("build table", "columns", columnCount, docerr.ErrInvalidDimension)
	}

	var b strings.Builder
	b.WriteString("<table><tbody>")
	for r := 0; r < rowCount; r++ {
		b.WriteString("<tr>")
		for c := 0; c < columnCount; c++ {
			b.WriteString("<td></td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String(), nil
}

// BuildTableWithHeaders returns a table whose first row holds headers in a
// <thead> and whose body holds rows. Every row must have len(headers) cells;
// all mismatching rows are reported together.
func BuildTableWithHeaders(headers []string, rows [][]string) (string, error) {
	if len(headers) == 0 {
		return "", docerr.Invalid("build table", "headers", 0, docerr.ErrInvalidDimension)
	}

	var result *multierror.Error
	for i, row := range rows {
		if len(row) != len(headers) {
			result = multierror.Append(result, docerr.Invalid(
				"build table",
				fmt.Sprintf("rows[%d]", i),
				len(row),
				docerr.ErrRowWidthMismatch,
			))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, h := range headers {
		b.WriteString("<th>")
		b.WriteString(EscapeText(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		writeRow(&b, row)
	}
	b.WriteString("</tbody></table>")
	return b.String(), nil
}

// BuildRow renders a single <tr> with one <td> per value.
func BuildRow(values []string) string {
	var b strings.Builder
	writeRow(&b, values)
	return b.String()
}

// BuildCell renders the inner content used when a single cell is replaced.
func BuildCell(value string) string {
	return "<td>" + EscapeText(value) + "</td>"
}

func writeRow(b *strings.Builder, values []string) {
	b.WriteString("<tr>")
	for _, v := range values {
		b.WriteString("<td>")
		b.WriteString(EscapeText(v))
		b.WriteString("</td>")
	}
	b.WriteString("</tr>")
}
