package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kopibot/kopi/internal/core"
)

func testConversation() (*core.Conversation, []*core.Message) {
	created := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	conv := &core.Conversation{
		ID:        "11111111-2222-3333-4444-555555555555",
		Topic:     "climate change",
		TopicKey:  "climate_change",
		Stance:    core.StanceStronglyFor,
		CreatedAt: created,
		UpdatedAt: created,
	}
	messages := []*core.Message{
		{ID: 1, ConversationID: conv.ID, Role: core.RoleUser, Content: "Climate change is a hoax", CreatedAt: created},
		{ID: 2, ConversationID: conv.ID, Role: core.RoleBot, Content: "Global temperatures have risen significantly.", CreatedAt: created},
	}
	return conv, messages
}

func TestGetExporter(t *testing.T) {
	tests := []struct {
		format  Format
		wantExt string
		wantErr bool
	}{
		{FormatMarkdown, "md", false},
		{FormatJSON, "json", false},
		{FormatPDF, "pdf", false},
		{Format("csv"), "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			exp, err := GetExporter(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported format")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := exp.FileExtension(); got != tt.wantExt {
				t.Errorf("wrong extension: got %s, want %s", got, tt.wantExt)
			}
		})
	}
}

func TestMarkdownExport(t *testing.T) {
	conv, messages := testConversation()

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(conv, messages, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Debate: climate change",
		"strongly_for",
		"#### User",
		"#### Bot",
		"Climate change is a hoax",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMarkdownExportEmptyTranscript(t *testing.T) {
	conv, _ := testConversation()

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(conv, nil, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No messages recorded") {
		t.Error("expected placeholder for empty transcript")
	}
}

func TestJSONExport(t *testing.T) {
	conv, messages := testConversation()

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(conv, messages, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded struct {
		Conversation *core.Conversation `json:"conversation"`
		Messages     []*core.Message    `json:"messages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Conversation.TopicKey != "climate_change" {
		t.Errorf("wrong topic key: %s", decoded.Conversation.TopicKey)
	}
	if len(decoded.Messages) != 2 {
		t.Errorf("wrong message count: %d", len(decoded.Messages))
	}
}

func TestPDFExport(t *testing.T) {
	conv, messages := testConversation()

	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(conv, messages, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}

func TestGenerateFilename(t *testing.T) {
	conv, _ := testConversation()

	got := GenerateFilename(conv, "md")
	want := "conversation_20260315_climate_change.md"
	if got != want {
		t.Errorf("wrong filename: got %s, want %s", got, want)
	}
}

func TestGenerateFilenameSanitizes(t *testing.T) {
	conv, _ := testConversation()
	conv.Topic = "is water wet? yes/no: a debate"

	got := GenerateFilename(conv, "pdf")
	for _, bad := range []string{"?", "/", ":", " "} {
		if strings.Contains(got, bad) {
			t.Errorf("filename contains %q: %s", bad, got)
		}
	}
}
