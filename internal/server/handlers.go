package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ironsheep/equip-scan-mcp/internal/equipment"
	"github.com/ironsheep/equip-scan-mcp/internal/geometry"
	"github.com/ironsheep/equip-scan-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "equip_detect", "equip_recognize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Resolves the session and its cached screenshot as needed
//  4. Calls the detection/features/recognition pipeline
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Screenshot Information
	case "equip_image_info":
		return s.handleImageInfo(args)

	// Detection
	case "equip_detect":
		return s.handleDetect(args)

	// Rectangle Editing
	case "equip_rect_add":
		return s.handleRectAdd(args)
	case "equip_rect_update":
		return s.handleRectUpdate(args)
	case "equip_rect_remove":
		return s.handleRectRemove(args)

	// Recognition
	case "equip_recognize":
		return s.handleRecognize(args)

	// Visual Verification
	case "equip_crop":
		return s.handleCrop(args)
	case "equip_annotate":
		return s.handleAnnotate(args)

	// Session Lifecycle
	case "equip_session_close":
		return s.handleSessionClose(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Screenshot Information Handlers ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection Handlers ===

type detectArgs struct {
	Path     string `json:"path"`
	Category string `json:"category"`
}

type sessionResult struct {
	SessionID   string                `json:"session_id"`
	Category    equipment.Category    `json:"category"`
	ImageWidth  int                   `json:"image_width"`
	ImageHeight int                   `json:"image_height"`
	Rectangles  []equipment.Rectangle `json:"rectangles"`
	Count       int                   `json:"count"`
}

func (s *Server) handleDetect(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	category, err := equipment.ParseCategory(a.Category)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	boxes, err := s.detector.Detect(img, category)
	if err != nil {
		return nil, err
	}

	session := equipment.NewSession(category, a.Path)
	session.AddBoxes(boxes)
	s.sessions.put(session)

	if s.debug {
		log.Printf("session %s: detected %d %s rectangles in %s (%d open sessions)",
			session.ID, len(boxes), category, a.Path, s.sessions.len())
	}
	return s.describeSession(session)
}

func (s *Server) describeSession(session *equipment.Session) (*sessionResult, error) {
	img, err := s.cache.Load(session.ImagePath)
	if err != nil {
		return nil, err
	}
	rects := session.Rectangles()
	return &sessionResult{
		SessionID:   session.ID.String(),
		Category:    session.Category,
		ImageWidth:  img.Bounds().Dx(),
		ImageHeight: img.Bounds().Dy(),
		Rectangles:  rects,
		Count:       len(rects),
	}, nil
}

// === Rectangle Editing Handlers ===

type rectArgs struct {
	SessionID string           `json:"session_id"`
	ID        equipment.RectID `json:"id"`
	X         int              `json:"x"`
	Y         int              `json:"y"`
	W         int              `json:"w"`
	H         int              `json:"h"`
}

func (a rectArgs) box() (geometry.Box, error) {
	if a.W <= 0 || a.H <= 0 {
		return geometry.Box{}, fmt.Errorf("rectangle must have positive size, got %dx%d", a.W, a.H)
	}
	return geometry.Box{X: a.X, Y: a.Y, W: a.W, H: a.H}, nil
}

func (s *Server) handleRectAdd(args json.RawMessage) (interface{}, error) {
	var a rectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session, err := s.sessions.get(a.SessionID)
	if err != nil {
		return nil, err
	}
	box, err := a.box()
	if err != nil {
		return nil, err
	}
	session.Add(box)
	return s.describeSession(session)
}

func (s *Server) handleRectUpdate(args json.RawMessage) (interface{}, error) {
	var a rectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session, err := s.sessions.get(a.SessionID)
	if err != nil {
		return nil, err
	}
	box, err := a.box()
	if err != nil {
		return nil, err
	}
	if err := session.Update(a.ID, box); err != nil {
		return nil, err
	}
	return s.describeSession(session)
}

type rectRefArgs struct {
	SessionID string           `json:"session_id"`
	ID        equipment.RectID `json:"id"`
}

func (s *Server) handleRectRemove(args json.RawMessage) (interface{}, error) {
	var a rectRefArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session, err := s.sessions.get(a.SessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Remove(a.ID); err != nil {
		return nil, err
	}
	return s.describeSession(session)
}

// === Recognition Handlers ===

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type recognizeResult struct {
	SessionID      string                                       `json:"session_id"`
	Boxes          map[equipment.RectID]geometry.Box            `json:"boxes"`
	Results        equipment.Result                             `json:"results"`
	DetectionTypes map[equipment.RectID]equipment.DetectionType `json:"detection_types"`
	Failures       map[equipment.DetectionType]string           `json:"failures,omitempty"`
}

func (s *Server) handleRecognize(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session, err := s.sessions.get(a.SessionID)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(session.ImagePath)
	if err != nil {
		return nil, err
	}

	report, err := s.orchestrator.Recognize(context.Background(), img, session.Rectangles(), session.Category)
	if err != nil {
		return nil, err
	}

	result := &recognizeResult{
		SessionID:      session.ID.String(),
		Boxes:          session.Boxes(),
		Results:        report.Results,
		DetectionTypes: report.DetectionTypes,
	}
	if len(report.Failures) > 0 {
		result.Failures = make(map[equipment.DetectionType]string, len(report.Failures))
		for dt, ferr := range report.Failures {
			result.Failures[dt] = ferr.Error()
		}
	}
	return result, nil
}

// === Visual Verification Handlers ===

type cropArgs struct {
	SessionID string           `json:"session_id"`
	ID        equipment.RectID `json:"id"`
	Normalize bool             `json:"normalize"`
}

type cropResult struct {
	*imaging.EncodedImage
	ID            equipment.RectID        `json:"id"`
	DetectionType equipment.DetectionType `json:"detection_type,omitempty"`
}

func (s *Server) handleCrop(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session, err := s.sessions.get(a.SessionID)
	if err != nil {
		return nil, err
	}
	rect, ok := session.Get(a.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", equipment.ErrRectNotFound, a.ID)
	}
	img, err := s.cache.Load(session.ImagePath)
	if err != nil {
		return nil, err
	}

	crop, err := imaging.CropRegion(img, rect.Rect())
	if err != nil {
		return nil, err
	}

	dt, known := equipment.DetectionTypeFor(session.Category, rect.Box)
	out := crop
	if a.Normalize {
		if !known {
			return nil, fmt.Errorf("no detection type for %s rectangle %d", session.Category, a.ID)
		}
		if out, err = s.extractor.Normalize(crop, dt); err != nil {
			return nil, err
		}
	}

	encoded, err := imaging.EncodePNG(out)
	if err != nil {
		return nil, err
	}
	result := &cropResult{EncodedImage: encoded, ID: a.ID}
	if known {
		result.DetectionType = dt
	}
	return result, nil
}

type annotateArgs struct {
	SessionID string `json:"session_id"`
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}
	if a.Thickness == 0 {
		a.Thickness = 2
	}
	session, err := s.sessions.get(a.SessionID)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(session.ImagePath)
	if err != nil {
		return nil, err
	}

	rects := session.Rectangles()
	labels := make([]imaging.Label, 0, len(rects))
	for _, r := range rects {
		labels = append(labels, imaging.NumberedLabel(r.Rect(), int(r.ID)))
	}
	return imaging.EncodePNG(imaging.Annotate(img, labels, a.Color, a.Thickness))
}

// === Session Lifecycle Handlers ===

func (s *Server) handleSessionClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	session, shared, err := s.sessions.remove(a.SessionID)
	if err != nil {
		return nil, err
	}
	if !shared {
		s.cache.Evict(session.ImagePath)
	}
	return map[string]interface{}{
		"session_id": session.ID.String(),
		"closed":     true,
	}, nil
}
