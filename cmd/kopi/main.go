package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kopibot/kopi/internal/bot"
	"github.com/kopibot/kopi/internal/config"
	"github.com/kopibot/kopi/internal/core"
	"github.com/kopibot/kopi/internal/export"
	"github.com/kopibot/kopi/internal/storage"
	"github.com/kopibot/kopi/internal/topics"
	"github.com/kopibot/kopi/web/handlers"
)

var (
	dbURL      string
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kopi",
	Short: "Persuasive debate bot",
	Long: `kopi is a debate bot that takes a stance on any topic and argues
for it persistently across a conversation.

Start a chat session, or run the HTTP API with 'kopi serve'.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database path or postgres:// URL (default: ~/.kopi/kopi.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.kopi/config.yaml)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	return cfg, nil
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	store, err := storage.Open(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

// findConversation resolves an ID prefix to a full conversation ID.
func findConversation(store storage.Storage, prefix string) (string, error) {
	summaries, err := store.ListConversations(100, 0)
	if err != nil {
		return "", err
	}

	for _, s := range summaries {
		if strings.HasPrefix(s.ID, prefix) {
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("conversation not found: %s", prefix)
}

// chat command - interactive debate session
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Start an interactive debate",
	Long: `Start an interactive debate session. The bot picks a topic and
stance from your first message and defends it for the rest of
the conversation.

Examples:
  kopi chat
  kopi chat "Climate change is a hoax"`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	b := bot.New()
	scanner := bufio.NewScanner(os.Stdin)

	var conv *core.Conversation
	var topic *core.DebateTopic

	fmt.Println("Say something to start a debate. Type 'exit' to quit.")

	firstMessage := strings.Join(args, " ")

	for {
		var message string
		if firstMessage != "" {
			message = firstMessage
			firstMessage = ""
			fmt.Printf("> %s\n", message)
		} else {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			message = strings.TrimSpace(scanner.Text())
		}

		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			break
		}
		if len(message) > cfg.Conversation.MaxMessageLength {
			fmt.Printf("Message too long (max %d characters).\n", cfg.Conversation.MaxMessageLength)
			continue
		}

		now := time.Now()
		if conv == nil {
			var topicKey string
			topicKey, topic = b.AnalyzeFirstMessage(message)
			conv = &core.Conversation{
				ID:        core.NewID(),
				Topic:     topic.Topic,
				TopicKey:  topicKey,
				Stance:    topic.Stance,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := store.CreateConversation(conv); err != nil {
				return fmt.Errorf("failed to create conversation: %w", err)
			}
			fmt.Printf("\n[debating %q, stance: %s]\n\n", topic.Topic, topic.Stance)
		}

		history, err := store.GetMessages(conv.ID, cfg.Conversation.MaxHistory*2)
		if err != nil {
			return err
		}

		if err := store.AddMessage(&core.Message{
			ConversationID: conv.ID,
			Role:           core.RoleUser,
			Content:        message,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		reply := b.Respond(message, derefMessages(history), topic)
		if err := store.AddMessage(&core.Message{
			ConversationID: conv.ID,
			Role:           core.RoleBot,
			Content:        reply.Text,
			CreatedAt:      time.Now(),
		}); err != nil {
			return err
		}

		fmt.Printf("\nkopi: %s\n\n", reply.Text)
	}

	if conv != nil {
		fmt.Printf("\nConversation saved: %s\n", conv.ID)
	}
	return scanner.Err()
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := getStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.ListConversations(50, 0)
		if err != nil {
			return err
		}

		if len(summaries) == 0 {
			fmt.Println("No conversations found. Start one with: kopi chat")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOPIC\tSTANCE\tMESSAGES\tCREATED")
		fmt.Fprintln(w, "──\t─────\t──────\t────────\t───────")

		for _, s := range summaries {
			shortID := s.ID
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}
			shortTopic := s.Topic
			if len(shortTopic) > 40 {
				shortTopic = shortTopic[:37] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				shortID,
				shortTopic,
				s.Stance,
				s.MessageCount,
				s.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()

		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := getStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findConversation(store, args[0])
		if err != nil {
			return err
		}

		conv, err := store.GetConversation(id)
		if err != nil {
			return err
		}

		messages, err := store.GetMessages(id, 1000)
		if err != nil {
			return err
		}

		fmt.Printf("\nDebate: %s\n", conv.Topic)
		fmt.Printf("   ID: %s\n", conv.ID)
		fmt.Printf("   Stance: %s\n", conv.Stance)
		fmt.Printf("   Created: %s\n", conv.CreatedAt.Format(time.RFC3339))
		fmt.Println()
		fmt.Println(strings.Repeat("─", 60))

		for _, m := range messages {
			label := "You"
			if m.Role == core.RoleBot {
				label = "kopi"
			}
			fmt.Printf("\n%s (%s):\n%s\n", label, m.CreatedAt.Format("15:04"), m.Content)
		}

		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := getStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findConversation(store, args[0])
		if err != nil {
			return err
		}

		if err := store.DeleteConversation(id); err != nil {
			return err
		}

		fmt.Printf("Deleted conversation: %s\n", id)
		return nil
	},
}

// topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics with prepared arguments",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("\nPrepared Topics:")
		fmt.Println(strings.Repeat("─", 60))

		for _, key := range topics.Keys() {
			t := topics.Get(key)
			fmt.Printf("\n%s (%s)\n", t.Topic, key)
			fmt.Printf("  Stance: %s | Arguments: %d\n", t.Stance, len(t.KeyArguments))
		}
	},
}

// export command
var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a conversation to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := getStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findConversation(store, args[0])
		if err != nil {
			return err
		}

		conv, err := store.GetConversation(id)
		if err != nil {
			return err
		}

		messages, err := store.GetMessages(id, 1000)
		if err != nil {
			return err
		}

		exporter, err := export.GetExporter(export.Format(exportFormat))
		if err != nil {
			return err
		}

		filename := export.GenerateFilename(conv, exporter.FileExtension())
		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer f.Close()

		if err := exporter.Export(conv, messages, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported to %s\n", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Export format (markdown, json, pdf)")
}

// serve command - start the HTTP API
var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		store, err := getStorage(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		fmt.Printf("\nStarting kopi server on http://localhost:%d\n\n", cfg.Server.Port)
		fmt.Println("Available endpoints:")
		fmt.Printf("  POST   http://localhost:%d/conversation      - Send a message\n", cfg.Server.Port)
		fmt.Printf("  GET    http://localhost:%d/conversation/:id  - View a conversation\n", cfg.Server.Port)
		fmt.Printf("  GET    http://localhost:%d/conversations     - List conversations\n", cfg.Server.Port)
		fmt.Println("\nPress Ctrl+C to stop the server")

		return startServer(store, cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Server port (overrides config)")
}

func startServer(store storage.Storage, cfg *config.Config) error {
	h := handlers.New(store, cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: h.Router(),
	}

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down...")
		server.Close()
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func derefMessages(messages []*core.Message) []core.Message {
	out := make([]core.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, *m)
	}
	return out
}
