package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muurk/onvifctl/internal/soap"
)

// RenderTree renders a parsed response value as an indented tree, children
// in name order, repeated siblings numbered
func RenderTree(title string, v any) string {
	var b strings.Builder
	b.WriteString(TreeKeyStyle.Bold(true).Render(title))
	b.WriteString("\n")
	writeTree(&b, v, 1)
	return strings.TrimRight(b.String(), "\n")
}

func writeTree(b *strings.Builder, v any, depth int) {
	n, ok := v.(soap.Node)
	if !ok {
		return
	}

	keys := make([]string, 0, len(n))
	for k := range n {
		if k != soap.AttrKey && k != soap.TextKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if list, ok := n[k].([]any); ok {
			for i, item := range list {
				writeEntry(b, fmt.Sprintf("%s[%d]", k, i), item, depth)
			}
			continue
		}
		writeEntry(b, k, n[k], depth)
	}
}

func writeEntry(b *strings.Builder, name string, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	line := indent + TreeKeyStyle.Render(name)

	switch t := v.(type) {
	case string:
		b.WriteString(line + ": " + ResultValueStyle.Render(t) + "\n")
	case soap.Node:
		if attrs := formatAttrs(t); attrs != "" {
			line += " " + TreeAttrStyle.Render(attrs)
		}
		if text := soap.Text(t); text != "" {
			line += ": " + ResultValueStyle.Render(text)
		}
		b.WriteString(line + "\n")
		writeTree(b, t, depth+1)
	}
}

func formatAttrs(n soap.Node) string {
	attrs, _ := n[soap.AttrKey].(map[string]string)
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, attrs[k])
	}
	return "[" + strings.Join(parts, " ") + "]"
}
