package export

import (
	"encoding/json"
	"io"

	"github.com/kopibot/kopi/internal/core"
)

// JSONExporter exports conversations to JSON format.
type JSONExporter struct{}

// Export writes the conversation as indented JSON.
func (e *JSONExporter) Export(conv *core.Conversation, messages []*core.Message, w io.Writer) error {
	payload := struct {
		Conversation *core.Conversation `json:"conversation"`
		Messages     []*core.Message    `json:"messages"`
	}{
		Conversation: conv,
		Messages:     messages,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return "json"
}
