// Package handlers provides the HTTP API for the debate bot.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kopibot/kopi/internal/bot"
	"github.com/kopibot/kopi/internal/config"
	"github.com/kopibot/kopi/internal/core"
	"github.com/kopibot/kopi/internal/export"
	"github.com/kopibot/kopi/internal/storage"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	bot     *bot.Bot
	storage storage.Storage
	cfg     *config.Config
}

// New creates a new Handler.
func New(store storage.Storage, cfg *config.Config) *Handler {
	return &Handler{
		bot:     bot.New(),
		storage: store,
		cfg:     cfg,
	}
}

// Router builds the HTTP router with all routes registered.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(processTime)

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)

	r.Post("/conversation", h.handleConversation)
	r.Get("/conversation/{id}", h.handleGetConversation)
	r.Delete("/conversation/{id}", h.handleDeleteConversation)
	r.Get("/conversation/{id}/export/{format}", h.handleExportConversation)
	r.Get("/conversations", h.handleListConversations)

	return r
}

// processTime records request duration in the X-Process-Time header.
// The header is stamped just before the response status is written.
func processTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tw := &timedWriter{ResponseWriter: w, start: start}
		next.ServeHTTP(tw, r)
		slog.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

type timedWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
}

func (tw *timedWriter) WriteHeader(code int) {
	if !tw.wroteHeader {
		tw.wroteHeader = true
		tw.Header().Set("X-Process-Time", strconv.FormatFloat(time.Since(tw.start).Seconds(), 'f', 6, 64))
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timedWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

type conversationRequest struct {
	ConversationID *string `json:"conversation_id"`
	Message        string  `json:"message"`
}

type messagePayload struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type conversationResponse struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []messagePayload `json:"messages"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.json(w, map[string]string{
		"service": "kopi",
		"message": "POST /conversation to start a debate",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.json(w, map[string]string{"status": "healthy"})
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.jsonError(w, "message is required", http.StatusBadRequest)
		return
	}
	if len(message) > h.cfg.Conversation.MaxMessageLength {
		h.jsonError(w, fmt.Sprintf("message exceeds %d characters", h.cfg.Conversation.MaxMessageLength), http.StatusBadRequest)
		return
	}

	if req.ConversationID == nil || *req.ConversationID == "" {
		h.startConversation(w, message)
		return
	}
	h.continueConversation(w, *req.ConversationID, message)
}

func (h *Handler) startConversation(w http.ResponseWriter, message string) {
	topicKey, topic := h.bot.AnalyzeFirstMessage(message)

	now := time.Now()
	conv := &core.Conversation{
		ID:        core.NewID(),
		Topic:     topic.Topic,
		TopicKey:  topicKey,
		Stance:    topic.Stance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.storage.CreateConversation(conv); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.storage.AddMessage(&core.Message{
		ConversationID: conv.ID,
		Role:           core.RoleUser,
		Content:        message,
		CreatedAt:      now,
	}); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reply := h.bot.Respond(message, nil, topic)
	if err := h.storage.AddMessage(&core.Message{
		ConversationID: conv.ID,
		Role:           core.RoleBot,
		Content:        reply.Text,
		CreatedAt:      time.Now(),
	}); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("conversation started",
		"conversation_id", conv.ID,
		"topic_key", topicKey,
		"stance", topic.Stance,
		"strategy", reply.Strategy)

	h.respondWithWindow(w, conv.ID)
}

func (h *Handler) continueConversation(w http.ResponseWriter, conversationID, message string) {
	conv, err := h.storage.GetConversation(conversationID)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if conv == nil {
		h.jsonError(w, "conversation not found", http.StatusNotFound)
		return
	}

	// History is captured before the new message so strategy
	// selection sees the prior turns only.
	history, err := h.storage.GetMessages(conv.ID, h.cfg.Conversation.MaxHistory*2)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	topic := h.bot.ResolveTopic(conv.TopicKey, conv.Stance)

	if err := h.storage.AddMessage(&core.Message{
		ConversationID: conv.ID,
		Role:           core.RoleUser,
		Content:        message,
		CreatedAt:      time.Now(),
	}); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reply := h.bot.Respond(message, derefMessages(history), topic)
	if err := h.storage.AddMessage(&core.Message{
		ConversationID: conv.ID,
		Role:           core.RoleBot,
		Content:        reply.Text,
		CreatedAt:      time.Now(),
	}); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("conversation continued",
		"conversation_id", conv.ID,
		"strategy", reply.Strategy,
		"fallback", reply.Fallback)

	h.respondWithWindow(w, conv.ID)
}

// respondWithWindow returns the most recent exchanges for a conversation.
func (h *Handler) respondWithWindow(w http.ResponseWriter, conversationID string) {
	window, err := h.storage.GetMessages(conversationID, h.cfg.Conversation.MaxHistory*2)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := conversationResponse{
		ConversationID: conversationID,
		Messages:       make([]messagePayload, 0, len(window)),
	}
	for _, m := range window {
		resp.Messages = append(resp.Messages, messagePayload{
			Role:    string(m.Role),
			Message: m.Content,
		})
	}

	h.json(w, resp)
}

func (h *Handler) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conv, err := h.storage.GetConversation(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if conv == nil {
		h.jsonError(w, "conversation not found", http.StatusNotFound)
		return
	}

	messages, err := h.storage.GetMessages(id, h.cfg.Conversation.MaxHistory*2)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	payload := make([]messagePayload, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, messagePayload{Role: string(m.Role), Message: m.Content})
	}

	h.json(w, map[string]interface{}{
		"conversation_id": conv.ID,
		"topic":           conv.Topic,
		"topic_key":       conv.TopicKey,
		"stance":          conv.Stance,
		"created_at":      conv.CreatedAt,
		"message_count":   len(messages),
		"messages":        payload,
	})
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 {
		limit = 20
	}

	summaries, err := h.storage.ListConversations(limit, offset)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.json(w, map[string]interface{}{
		"conversations": summaries,
	})
}

func (h *Handler) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conv, err := h.storage.GetConversation(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if conv == nil {
		h.jsonError(w, "conversation not found", http.StatusNotFound)
		return
	}

	if err := h.storage.DeleteConversation(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := chi.URLParam(r, "format")

	conv, err := h.storage.GetConversation(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if conv == nil {
		h.jsonError(w, "conversation not found", http.StatusNotFound)
		return
	}

	exporter, err := export.GetExporter(export.Format(format))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	messages, err := h.storage.GetMessages(id, 1000)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := export.GenerateFilename(conv, exporter.FileExtension())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	switch export.Format(format) {
	case export.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/markdown")
	}

	if err := exporter.Export(conv, messages, w); err != nil {
		slog.Error("export failed", "conversation_id", id, "format", format, "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
	}
}

func derefMessages(messages []*core.Message) []core.Message {
	out := make([]core.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, *m)
	}
	return out
}

func (h *Handler) json(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
