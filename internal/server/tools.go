package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var categoryEnum = []string{"chara", "weapon", "summon"}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session id returned by equip_detect",
	}
}

// boxProperties adds the x/y/w/h schema entries of a rectangle to props.
func boxProperties(props map[string]interface{}) map[string]interface{} {
	props["x"] = map[string]interface{}{
		"type":        "integer",
		"description": "Left edge X coordinate (0-based)",
	}
	props["y"] = map[string]interface{}{
		"type":        "integer",
		"description": "Top edge Y coordinate (0-based)",
	}
	props["w"] = map[string]interface{}{
		"type":        "integer",
		"description": "Width in pixels",
	}
	props["h"] = map[string]interface{}{
		"type":        "integer",
		"description": "Height in pixels",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Screenshot Information
		{
			Name:        "equip_image_info",
			Description: "Decode a screenshot and return its dimensions, format and file size. Fails if the file is not a readable PNG or JPEG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the screenshot",
					},
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "equip_detect",
			Description: "Detect equipment icons in a screenshot and open an editing session. Returns the rectangles in reading order (top-to-bottom, then left-to-right), each with a stable id. Zero rectangles is a normal result; add them manually with equip_rect_add.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the screenshot",
					},
					"category": map[string]interface{}{
						"type":        "string",
						"enum":        categoryEnum,
						"description": "Equipment category shown in the screenshot",
					},
				},
				"required": []string{"path", "category"},
			},
		},

		// Rectangle Editing
		{
			Name:        "equip_rect_add",
			Description: "Add a rectangle to a session. The new rectangle gets a fresh id; ids are never reused within a session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": boxProperties(map[string]interface{}{
					"session_id": sessionIDProperty(),
				}),
				"required": []string{"session_id", "x", "y", "w", "h"},
			},
		},
		{
			Name:        "equip_rect_update",
			Description: "Move or resize an existing rectangle. Its id does not change.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": boxProperties(map[string]interface{}{
					"session_id": sessionIDProperty(),
					"id": map[string]interface{}{
						"type":        "integer",
						"description": "Rectangle id",
					},
				}),
				"required": []string{"session_id", "id", "x", "y", "w", "h"},
			},
		},
		{
			Name:        "equip_rect_remove",
			Description: "Remove a rectangle from a session. The remaining rectangles keep their ids.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"id": map[string]interface{}{
						"type":        "integer",
						"description": "Rectangle id",
					},
				},
				"required": []string{"session_id", "id"},
			},
		},

		// Recognition
		{
			Name:        "equip_recognize",
			Description: "Identify every rectangle of a session against the matching service. Results map rectangle id to candidates in descending confidence. A missing id means its group could not be matched (see failures); an empty list means no match was found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},

		// Visual Verification
		{
			Name:        "equip_crop",
			Description: "Return one rectangle of a session as base64-encoded PNG, optionally resized to the canonical size used for matching.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"id": map[string]interface{}{
						"type":        "integer",
						"description": "Rectangle id",
					},
					"normalize": map[string]interface{}{
						"type":        "boolean",
						"description": "Resize to the detection type's canonical size. Default false",
						"default":     false,
					},
				},
				"required": []string{"session_id", "id"},
			},
		},
		{
			Name:        "equip_annotate",
			Description: "Draw every rectangle of a session with its id over the screenshot and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex. Default #FF0000",
						"default":     "#FF0000",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Outline thickness in pixels. Default 2",
						"default":     2,
					},
				},
				"required": []string{"session_id"},
			},
		},

		// Session Lifecycle
		{
			Name:        "equip_session_close",
			Description: "Discard a session and release its cached screenshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
