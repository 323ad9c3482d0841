package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/equip-scan-mcp/internal/config"
	"github.com/ironsheep/equip-scan-mcp/internal/detection"
	"github.com/ironsheep/equip-scan-mcp/internal/features"
	"github.com/ironsheep/equip-scan-mcp/internal/imaging"
	"github.com/ironsheep/equip-scan-mcp/internal/matcher"
	"github.com/ironsheep/equip-scan-mcp/internal/recognition"
)

// ServerName and ServerVersion are reported during initialize.
const (
	ServerName    = "equip-scan-mcp"
	ServerVersion = "0.1.0"
)

// Server handles MCP protocol communication
type Server struct {
	cache        *imaging.ImageCache
	detector     *detection.Detector
	extractor    *features.Extractor
	orchestrator *recognition.Orchestrator
	sessions     *sessionStore
	debug        bool
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server that matches against the service configured in cfg.
func New(cfg config.Config) (*Server, error) {
	return newServer(cfg, matcher.NewClient(cfg))
}

// newServer wires the pipeline around any Matcher, so tests can stand in
// for the matching service.
func newServer(cfg config.Config, m recognition.Matcher) (*Server, error) {
	detector, err := detection.NewDetector(cfg.Tuning.Detection)
	if err != nil {
		return nil, fmt.Errorf("invalid detection tuning: %w", err)
	}
	extractor := features.NewExtractor(cfg.Tuning.Sizes, cfg.Tuning.Budgets)

	return &Server{
		cache:     imaging.NewImageCache(),
		detector:  detector,
		extractor: extractor,
		orchestrator: recognition.New(m, extractor, recognition.Options{
			Timeout:        cfg.RecognizeTimeout(),
			ExtractWorkers: cfg.ExtractWorkers,
		}),
		sessions: newSessionStore(),
		debug:    cfg.Debug(),
	}, nil
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	defer s.cache.Clear()
	return s.serve(os.Stdin, os.Stdout)
}

func (s *Server) serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		if s.debug {
			log.Printf("<- %s", req.Method)
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": ServerVersion,
			},
		},
	}
}
