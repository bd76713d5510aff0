package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Properties shared by several tools.
var (
	guildProperty = map[string]interface{}{
		"type":        "string",
		"description": "Guild (server) id; each guild keeps its own contest records",
	}
	playerProperty = map[string]interface{}{
		"type":        "string",
		"description": "Player name (case-insensitive)",
	}
	templateDirProperty = map[string]interface{}{
		"type":        "string",
		"description": "Directory of item icon templates. Defaults to the configured sprites directory",
	}
	thresholdProperty = map[string]interface{}{
		"type":        "number",
		"description": "Minimum combined confidence for a detection. Defaults to the configured threshold (0.85)",
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Detection
		{
			Name:        "loot_detect",
			Description: "Detect the loot items shown in the loot bag of a game screenshot. Returns one entry per recognized slot with the item name and confidence. Unreadable or undersized screenshots yield an empty list.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the screenshot",
					},
					"template_dir": templateDirProperty,
					"threshold":    thresholdProperty,
					"verbose": map[string]interface{}{
						"type":        "boolean",
						"description": "Include per-slot geometry, variance and best match, and report errors instead of an empty list",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "loot_detect_batch",
			Description: "Detect loot in several screenshots concurrently against one template library. Results keep the input order; per-screenshot failures are reported inline.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"description": "Absolute paths to the screenshots",
						"items":       map[string]interface{}{"type": "string"},
					},
					"template_dir": templateDirProperty,
					"threshold":    thresholdProperty,
				},
				"required": []string{"paths"},
			},
		},
		{
			Name:        "loot_templates",
			Description: "List the item names of the templates in a template directory, in matching order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template_dir": templateDirProperty,
				},
			},
		},
		{
			Name:        "loot_slot_overlay",
			Description: "Render the loot GUI crop of a screenshot with the sampled slot boxes outlined. Use this to check the layout calibration for a new resolution.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the screenshot",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional PNG path to write instead of returning base64 image data",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "loot_score",
			Description: "Detect the loot in a screenshot and credit it to the player's active PPE. New items earn their loot table value, repeats earn half, rounded down to half points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guild":  guildProperty,
					"player": playerProperty,
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the screenshot",
					},
					"template_dir": templateDirProperty,
					"threshold":    thresholdProperty,
				},
				"required": []string{"guild", "player", "path"},
			},
		},

		// Contest records
		{
			Name:        "player_add",
			Description: "Enroll a player in the contest with an active PPE #1.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guild":  guildProperty,
					"player": playerProperty,
				},
				"required": []string{"guild", "player"},
			},
		},
		{
			Name:        "player_remove",
			Description: "Remove a player and all of their PPEs from the contest.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guild":  guildProperty,
					"player": playerProperty,
				},
				"required": []string{"guild", "player"},
			},
		},
		{
			Name:        "ppe_new",
			Description: "Start a new PPE for a player and make it active.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guild":  guildProperty,
					"player": playerProperty,
				},
				"required": []string{"guild", "player"},
			},
		},
		{
			Name:        "ppe_set_active",
			Description: "Switch a player's active PPE.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guild":  guildProperty,
					"player": playerProperty,
					"ppe_id": map[string]interface{}{
						"type":        "integer",
						"description": "Id of an existing PPE",
					},
				},
				"required": []string{"guild", "player", "ppe_id"},
			},
		},
		{
			Name:        "ppe_add_points",
			Description: "Manually adjust the points of a player's active PPE. Negative amounts subtract.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guild":  guildProperty,
					"player": playerProperty,
					"amount": map[string]interface{}{
						"type":        "number",
						"description": "Points to add",
					},
				},
				"required": []string{"guild", "player", "amount"},
			},
		},
		{
			Name:        "ppe_status",
			Description: "Show a player's PPEs, their points and items, and which one is active.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guild":  guildProperty,
					"player": playerProperty,
				},
				"required": []string{"guild", "player"},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Rank players by their best PPE.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"guild": guildProperty,
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum rows to return. 0 returns every player",
						"default":     0,
					},
				},
				"required": []string{"guild"},
			},
		},

		// Diagnostics
		{
			Name:        "ocr_info",
			Description: "Report whether stack-count OCR is available and which Tesseract version backs it.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
