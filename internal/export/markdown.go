package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/kopibot/kopi/internal/core"
)

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct{}

// Export writes the conversation as Markdown.
func (e *MarkdownExporter) Export(conv *core.Conversation, messages []*core.Message, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Debate: %s\n\n", conv.Topic))

	sb.WriteString("## Conversation Information\n\n")
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", conv.ID))
	sb.WriteString(fmt.Sprintf("- **Topic:** %s\n", conv.Topic))
	sb.WriteString(fmt.Sprintf("- **Bot stance:** %s\n", conv.Stance))
	sb.WriteString(fmt.Sprintf("- **Created:** %s\n", conv.CreatedAt.Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("\n")

	sb.WriteString("## Transcript\n\n")

	if len(messages) == 0 {
		sb.WriteString("*No messages recorded.*\n\n")
	} else {
		for _, msg := range messages {
			sb.WriteString(fmt.Sprintf("#### %s\n\n", roleLabel(msg.Role)))
			sb.WriteString(fmt.Sprintf("*%s*\n\n", msg.CreatedAt.Format("3:04 PM")))
			sb.WriteString(msg.Content)
			sb.WriteString("\n\n---\n\n")
		}
	}

	sb.WriteString("*Exported from kopi*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
