package agentboot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
)

// FormatToolResultMarkdown renders one chunk as a markdown section: heading,
// error, bullet list of sentences, a metadata line and the source.
func FormatToolResultMarkdown(chunk *schema.ToolResultChunk) string {
	if chunk == nil {
		return ""
	}

	var b strings.Builder

	title := strings.TrimSpace(chunk.Title)
	if title == "" {
		title = strings.TrimSpace(chunk.ToolName)
	}
	if title != "" {
		fmt.Fprintf(&b, "### %s\n\n", title)
	}

	if e := strings.TrimSpace(chunk.Error); e != "" {
		fmt.Fprintf(&b, "> **Error:** %s\n\n", e)
	}

	wrote := false
	for _, s := range chunk.Sentences {
		if s = strings.TrimSpace(s); s != "" {
			fmt.Fprintf(&b, "- %s\n", s)
			wrote = true
		}
	}
	if wrote {
		b.WriteByte('\n')
	}

	if len(chunk.Metadata) > 0 {
		keys := make([]string, 0, len(chunk.Metadata))
		for k := range chunk.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + chunk.Metadata[k]
		}
		fmt.Fprintf(&b, "_%s_\n\n", strings.Join(pairs, ", "))
	}

	if src := strings.TrimSpace(chunk.Attribution); src != "" {
		fmt.Fprintf(&b, "Source: %s\n", src)
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatToolInputsToMarkdown describes a call for the summarization prompt.
func formatToolInputsToMarkdown(toolName string, params api.ToolCallFunctionArguments) string {
	if len(params) == 0 {
		return fmt.Sprintf("Tool: `%s` (no parameters)", mdEscape(toolName))
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Tool: `%s`\n\nParameters:\n", mdEscape(toolName))
	for _, k := range keys {
		fmt.Fprintf(&b, "- **%s**: %s\n", mdEscape(k), mdEscape(argText(params[k])))
	}
	return b.String()
}

func argText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", "&lt;",
	">", "&gt;",
)

func mdEscape(s string) string {
	return markdownEscaper.Replace(s)
}
