// Package export handles exporting conversations to various formats.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/kopibot/kopi/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// Exporter defines the interface for exporting conversations.
type Exporter interface {
	Export(conv *core.Conversation, messages []*core.Message, w io.Writer) error
	FileExtension() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename creates a filename for the export.
func GenerateFilename(conv *core.Conversation, ext string) string {
	topic := conv.Topic
	if len(topic) > 50 {
		topic = topic[:50]
	}

	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	topic = replacer.Replace(topic)

	timestamp := conv.CreatedAt.Format("20060102")
	return fmt.Sprintf("conversation_%s_%s.%s", timestamp, topic, ext)
}

// Helper to label a message's author
func roleLabel(role core.Role) string {
	if role == core.RoleBot {
		return "Bot"
	}
	return "User"
}
