package outwriter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/asmstats/schema"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownTable accumulates a GitHub-flavored markdown table.
type markdownTable struct {
	sb strings.Builder
}

func newMarkdownTable(headers ...string) *markdownTable {
	t := &markdownTable{}
	escaped := make([]string, len(headers))
	for i, h := range headers {
		escaped[i] = escapeMarkdownCell(h)
	}
	t.row(escaped...)
	t.sb.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	return t
}

// row appends cells as-is; callers escape plain text with escapeMarkdownCell.
func (t *markdownTable) row(cells ...string) {
	t.sb.WriteString("|")
	for _, c := range cells {
		t.sb.WriteString(" " + c + " |")
	}
	t.sb.WriteString("\n")
}

func (t *markdownTable) String() string {
	return t.sb.String()
}

// escapeMarkdownCell keeps cell text from breaking the table layout.
func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// accessionLink renders an accession as a link to its NCBI genome page.
func accessionLink(accession string) string {
	return fmt.Sprintf("[%s](%s)", accession, schema.GenomePageURL(accession))
}

// bold marks a markdown cell as the best of its column.
func bold(s string) string {
	return "**" + s + "**"
}

// writeHTMLDocument converts markdown to a standalone HTML page.
func writeHTMLDocument(w io.Writer, title, markdown string) error {
	var content bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return fmt.Errorf("markdown convert: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>%s</title>"+
		"<style>body{font-family:sans-serif;margin:1rem;} table{border-collapse:collapse;} "+
		"th,td{border:1px solid #ccc;padding:0.3rem 0.5rem;text-align:right;} th{background:#f1f5f9;}</style>"+
		"</head><body>\n%s</body></html>\n", title, content.String())
	return err
}
