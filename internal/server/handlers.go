package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/loot-detect-mcp/internal/imaging"
	"github.com/ironsheep/loot-detect-mcp/internal/records"
	"github.com/ironsheep/loot-detect-mcp/internal/scoring"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "loot_detect", "ppe_new").
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
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
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
//  2. Applies configured defaults for optional parameters
//  3. Calls the detection, scoring or records layer
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Detection
	case "loot_detect":
		return s.handleLootDetect(args)
	case "loot_detect_batch":
		return s.handleLootDetectBatch(args)
	case "loot_templates":
		return s.handleLootTemplates(args)
	case "loot_slot_overlay":
		return s.handleLootSlotOverlay(args)
	case "loot_score":
		return s.handleLootScore(args)

	// Contest records
	case "player_add":
		return s.handlePlayerAdd(args)
	case "player_remove":
		return s.handlePlayerRemove(args)
	case "ppe_new":
		return s.handlePPENew(args)
	case "ppe_set_active":
		return s.handlePPESetActive(args)
	case "ppe_add_points":
		return s.handlePPEAddPoints(args)
	case "ppe_status":
		return s.handlePPEStatus(args)
	case "leaderboard":
		return s.handleLeaderboard(args)

	// Diagnostics
	case "ocr_info":
		return s.ocr.GetInfo(), nil

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

// threshold returns t, or the configured threshold when t is unset.
func (s *Server) threshold(t *float64) float64 {
	if t == nil {
		return s.cfg.Matching.Threshold
	}
	return *t
}

// === Detection Handlers ===

type lootDetectArgs struct {
	Path        string   `json:"path"`
	TemplateDir string   `json:"template_dir"`
	Threshold   *float64 `json:"threshold"`
	Verbose     bool     `json:"verbose"`
}

func (s *Server) handleLootDetect(args json.RawMessage) (interface{}, error) {
	var a lootDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	if !a.Verbose {
		return s.detector.Detect(a.Path, a.TemplateDir, s.threshold(a.Threshold)), nil
	}
	return s.detector.DetectFile(a.Path, a.TemplateDir, s.threshold(a.Threshold))
}

type lootDetectBatchArgs struct {
	Paths       []string `json:"paths"`
	TemplateDir string   `json:"template_dir"`
	Threshold   *float64 `json:"threshold"`
}

func (s *Server) handleLootDetectBatch(args json.RawMessage) (interface{}, error) {
	var a lootDetectBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must list at least one screenshot")
	}
	return s.detector.DetectBatch(context.Background(), a.Paths, a.TemplateDir, s.threshold(a.Threshold))
}

type lootTemplatesArgs struct {
	TemplateDir string `json:"template_dir"`
}

func (s *Server) handleLootTemplates(args json.RawMessage) (interface{}, error) {
	var a lootTemplatesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	lib, err := s.detector.Library(a.TemplateDir)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"dir":   lib.Dir,
		"size":  lib.Size,
		"count": lib.Len(),
		"items": lib.Names(),
	}, nil
}

type lootSlotOverlayArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
}

func (s *Server) handleLootSlotOverlay(args json.RawMessage) (interface{}, error) {
	var a lootSlotOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	overlay, err := s.detector.OverlayFile(a.Path)
	if err != nil {
		return nil, err
	}
	result := map[string]interface{}{
		"width":  overlay.Bounds().Dx(),
		"height": overlay.Bounds().Dy(),
	}

	if a.OutputPath != "" {
		if err := imaging.SavePNG(a.OutputPath, overlay); err != nil {
			return nil, err
		}
		result["output_path"] = a.OutputPath
		return result, nil
	}

	encoded, err := imaging.EncodePNGBase64(overlay)
	if err != nil {
		return nil, err
	}
	result["image_base64"] = encoded
	return result, nil
}

type lootScoreArgs struct {
	Guild       string   `json:"guild"`
	Player      string   `json:"player"`
	Path        string   `json:"path"`
	TemplateDir string   `json:"template_dir"`
	Threshold   *float64 `json:"threshold"`
}

func (s *Server) handleLootScore(args json.RawMessage) (interface{}, error) {
	var a lootScoreArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.Player == "" {
		return nil, errors.New("path and player are required")
	}

	// The table is re-read on every call so edits apply without a restart.
	table, err := scoring.LoadLootTable(s.cfg.Scoring.LootTable)
	if err != nil {
		return nil, err
	}

	detections := s.detector.Detect(a.Path, a.TemplateDir, s.threshold(a.Threshold))
	scorer := scoring.NewScorer(s.store, table, s.cfg.Scoring.AlwaysFullValue, s.log.With().Str("component", "scoring").Logger())
	res, err := scorer.Score(a.Guild, a.Player, detections)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"detections": detections,
		"score":      res,
	}, nil
}

// === Contest Record Handlers ===

type playerArgs struct {
	Guild  string `json:"guild"`
	Player string `json:"player"`
}

func (s *Server) handlePlayerAdd(args json.RawMessage) (interface{}, error) {
	var a playerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	var player *records.Player
	err := s.store.Update(a.Guild, func(recs records.Records) error {
		var err error
		player, err = recs.AddPlayer(a.Player)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"player": records.Key(a.Player), "record": player}, nil
}

func (s *Server) handlePlayerRemove(args json.RawMessage) (interface{}, error) {
	var a playerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	err := s.store.Update(a.Guild, func(recs records.Records) error {
		return recs.RemovePlayer(a.Player)
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"player": records.Key(a.Player), "removed": true}, nil
}

func (s *Server) handlePPENew(args json.RawMessage) (interface{}, error) {
	var a playerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	var ppe *records.PPE
	err := s.store.Update(a.Guild, func(recs records.Records) error {
		p, err := recs.Member(a.Player)
		if err != nil {
			return err
		}
		ppe, err = p.NewPPE(s.cfg.Scoring.MaxPPEs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ppe, nil
}

type ppeSetActiveArgs struct {
	Guild  string `json:"guild"`
	Player string `json:"player"`
	PPEID  int    `json:"ppe_id"`
}

func (s *Server) handlePPESetActive(args json.RawMessage) (interface{}, error) {
	var a ppeSetActiveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	var ppe *records.PPE
	err := s.store.Update(a.Guild, func(recs records.Records) error {
		p, err := recs.Member(a.Player)
		if err != nil {
			return err
		}
		if err := p.SetActive(a.PPEID); err != nil {
			return err
		}
		ppe, err = p.Active()
		return err
	})
	if err != nil {
		return nil, err
	}
	return ppe, nil
}

type ppeAddPointsArgs struct {
	Guild  string  `json:"guild"`
	Player string  `json:"player"`
	Amount float64 `json:"amount"`
}

func (s *Server) handlePPEAddPoints(args json.RawMessage) (interface{}, error) {
	var a ppeAddPointsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	var ppe *records.PPE
	err := s.store.Update(a.Guild, func(recs records.Records) error {
		p, err := recs.Member(a.Player)
		if err != nil {
			return err
		}
		ppe, err = p.AddPoints(a.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ppe, nil
}

func (s *Server) handlePPEStatus(args json.RawMessage) (interface{}, error) {
	var a playerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	recs, err := s.store.Load(a.Guild)
	if err != nil {
		return nil, err
	}
	p, err := recs.Member(a.Player)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"player": records.Key(a.Player), "record": p}, nil
}

type leaderboardArgs struct {
	Guild string `json:"guild"`
	Limit int    `json:"limit"`
}

func (s *Server) handleLeaderboard(args json.RawMessage) (interface{}, error) {
	var a leaderboardArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	recs, err := s.store.Load(a.Guild)
	if err != nil {
		return nil, err
	}
	rows := recs.Leaderboard()
	if a.Limit > 0 && a.Limit < len(rows) {
		rows = rows[:a.Limit]
	}
	return rows, nil
}
