// Package scoring turns detections into contest points.
//
// Each item has a base value from the loot table. The first time an item is
// credited to a PPE it earns the full value; repeats earn half. Values are
// rounded down to the nearest half point. Items worth exactly the
// always-full value (1 by default) are never halved and never recorded as
// duplicates.
package scoring

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ironsheep/loot-detect-mcp/internal/detection"
	"github.com/ironsheep/loot-detect-mcp/internal/records"
)

const (
	nameColumn   = "Item Name"
	pointsColumn = "Points"
)

// Table maps lower-cased item names to base points.
type Table map[string]float64

// Points returns the base value of an item, 0 when unknown.
func (t Table) Points(item string) float64 {
	return t[strings.ToLower(strings.TrimSpace(item))]
}

// LoadLootTable reads a CSV file with "Item Name" and "Points" columns.
// Other columns are ignored; column order does not matter.
func LoadLootTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open loot table: %w", err)
	}
	defer f.Close()

	return ParseLootTable(f)
}

// ParseLootTable reads a loot table from r.
func ParseLootTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read loot table header: %w", err)
	}
	nameCol, pointsCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case nameColumn:
			nameCol = i
		case pointsColumn:
			pointsCol = i
		}
	}
	if nameCol < 0 || pointsCol < 0 {
		return nil, fmt.Errorf("loot table needs %q and %q columns, got %v", nameColumn, pointsColumn, header)
	}

	table := Table{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read loot table: %w", err)
		}
		if nameCol >= len(row) || pointsCol >= len(row) {
			return nil, fmt.Errorf("loot table line %d: missing columns", line)
		}

		name := strings.ToLower(strings.TrimSpace(row[nameCol]))
		if name == "" {
			continue
		}
		points, err := strconv.ParseFloat(strings.TrimSpace(row[pointsCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("loot table line %d: invalid points %q: %w", line, row[pointsCol], err)
		}
		table[name] = points
	}
	return table, nil
}

// Award is the outcome for one detection.
type Award struct {
	Item      string  `json:"item"`
	Points    float64 `json:"points"`
	Duplicate bool    `json:"duplicate"`
}

// Apply credits detections to ppe and returns one Award per scoring item,
// in detection order. Items without a positive table value are skipped.
//
// An item counts as a duplicate when it is already in the PPE, including
// items credited earlier in the same call.
func Apply(ppe *records.PPE, detections []detection.Detection, table Table, alwaysFull float64) []Award {
	awards := make([]Award, 0, len(detections))
	for _, det := range detections {
		name := strings.ToLower(strings.TrimSpace(det.Item))
		base := table[name]
		if base <= 0 {
			continue
		}

		var duplicate bool
		value := base
		if base != alwaysFull {
			duplicate = ppe.HasItem(name)
			if duplicate {
				value = base / 2
			}
			value = math.Floor(value*2) / 2
		}

		if !duplicate {
			ppe.Items = append(ppe.Items, name)
		}
		ppe.Points += value
		awards = append(awards, Award{Item: det.Item, Points: value, Duplicate: duplicate})
	}
	return awards
}

// Result is the outcome of scoring one screenshot for a player.
type Result struct {
	Player string  `json:"player"`
	PPE    string  `json:"ppe"`
	Awards []Award `json:"awards"`
	Total  float64 `json:"total"` // PPE total after the awards
}

// Scorer applies detections to players' active PPEs in a records store.
type Scorer struct {
	store      *records.Store
	table      Table
	alwaysFull float64
	log        zerolog.Logger
}

// NewScorer creates a Scorer.
func NewScorer(store *records.Store, table Table, alwaysFull float64, logger zerolog.Logger) *Scorer {
	return &Scorer{store: store, table: table, alwaysFull: alwaysFull, log: logger}
}

// Score credits detections to the active PPE of player in guild and saves
// the records. The player must be a contest member with an active PPE
// (records.ErrNotMember, records.ErrNoActivePPE); on error nothing is
// saved.
func (s *Scorer) Score(guild, player string, detections []detection.Detection) (*Result, error) {
	var res *Result
	err := s.store.Update(guild, func(recs records.Records) error {
		p, err := recs.Member(player)
		if err != nil {
			return err
		}
		ppe, err := p.Active()
		if err != nil {
			return fmt.Errorf("%s: %w", player, err)
		}

		res = &Result{
			Player: player,
			PPE:    ppe.Name,
			Awards: Apply(ppe, detections, s.table, s.alwaysFull),
			Total:  ppe.Points,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("guild", guild).
		Str("player", player).
		Int("awards", len(res.Awards)).
		Float64("total", res.Total).
		Msg("loot scored")
	return res, nil
}
