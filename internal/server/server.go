// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mcp-nutricalci/internal/catalog"
	"mcp-nutricalci/internal/metrics"
	"mcp-nutricalci/internal/session"
)

const (
	serverName    = "nutricalci"
	serverVersion = "1.0.0"
)

var (
	ErrInvalidParams = errors.New("invalid parameters")
	ErrUnknownTool   = errors.New("unknown tool")
)

type Config struct {
	Host string
	Port int
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type NutriServer struct {
	httpServer *http.Server
	catalog    *catalog.Catalog
	sessions   *session.Manager
	tools      map[string]toolHandler
	config     *Config
	now        func() time.Time
}

func NewNutriServer(cfg *Config, cat *catalog.Catalog) (*NutriServer, error) {
	sessions, err := session.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sessions: %w", err)
	}

	nutriServer := &NutriServer{
		catalog:  cat,
		sessions: sessions,
		config:   cfg,
		now:      time.Now,
	}
	nutriServer.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", nutriServer.handleHealth)
	mux.HandleFunc("/", nutriServer.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	nutriServer.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nutriServer, nil
}

func (s *NutriServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *NutriServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("%v: %s", ErrUnknownTool, request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

type healthResponse struct {
	Server   protocol.Implementation `json:"server"`
	Dishes   int                     `json:"dishes"`
	Sessions int                     `json:"sessions"`
}

func (s *NutriServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(healthResponse{
		Server: protocol.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		Dishes:   s.catalog.Len(),
		Sessions: s.sessions.Len(),
	})
	if err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// statusFor maps tool errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrDishNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, metrics.ErrUnsupportedSex),
		errors.Is(err, metrics.ErrUnknownActivity),
		errors.Is(err, metrics.ErrUnknownGoal),
		errors.Is(err, metrics.ErrInvalidHeight):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *NutriServer) Start(ctx context.Context) error {
	log.Printf("Starting nutricalci server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *NutriServer) Stop() error {
	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}
	if s.sessions != nil {
		if closeErr := s.sessions.CloseAll(); closeErr != nil {
			log.Printf("Failed to close sessions: %v", closeErr)
		}
	}
	return err
}

func (s *NutriServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
