// Package records keeps the per-guild contest state: which players take
// part, their PPEs (item-collection runs) and the points each has earned.
//
// Every guild is stored as one JSON document. Store serializes all
// read-modify-write cycles of a guild behind a per-guild mutex; different
// guilds never block each other.
package records

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotMember is returned for players who were never added to the
	// contest or have been removed.
	ErrNotMember = errors.New("player is not a contest member")

	// ErrAlreadyMember is returned when adding an existing player.
	ErrAlreadyMember = errors.New("player is already a contest member")

	// ErrNoActivePPE is returned when a player has no active PPE.
	ErrNoActivePPE = errors.New("player has no active PPE")

	// ErrPPENotFound is returned for an unknown PPE id.
	ErrPPENotFound = errors.New("PPE not found")

	// ErrPPELimit is returned when a player already has the maximum number
	// of PPEs.
	ErrPPELimit = errors.New("PPE limit reached")
)

// PPE is one run of a player. Items holds the lower-cased names of the
// items already credited, which makes repeats score as duplicates.
type PPE struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Points float64  `json:"points"`
	Items  []string `json:"items"`
}

// HasItem reports whether item was already credited to this PPE.
func (p *PPE) HasItem(item string) bool {
	item = strings.ToLower(item)
	for _, i := range p.Items {
		if strings.ToLower(i) == item {
			return true
		}
	}
	return false
}

// Player is one contest participant.
type Player struct {
	IsMember  bool   `json:"is_member"`
	ActivePPE int    `json:"active_ppe,omitempty"` // 0 when none
	PPEs      []*PPE `json:"ppes"`
}

// Active returns the active PPE.
func (p *Player) Active() (*PPE, error) {
	if p.ActivePPE == 0 {
		return nil, ErrNoActivePPE
	}
	for _, ppe := range p.PPEs {
		if ppe.ID == p.ActivePPE {
			return ppe, nil
		}
	}
	return nil, fmt.Errorf("%w: active PPE #%d is missing", ErrNoActivePPE, p.ActivePPE)
}

// NewPPE creates the next PPE and makes it active. Ids continue after the
// highest existing id. limit <= 0 means no limit.
func (p *Player) NewPPE(limit int) (*PPE, error) {
	if limit > 0 && len(p.PPEs) >= limit {
		return nil, fmt.Errorf("%w: %d of %d", ErrPPELimit, len(p.PPEs), limit)
	}

	next := 1
	for _, ppe := range p.PPEs {
		if ppe.ID >= next {
			next = ppe.ID + 1
		}
	}
	ppe := &PPE{ID: next, Name: fmt.Sprintf("PPE #%d", next), Items: []string{}}
	p.PPEs = append(p.PPEs, ppe)
	p.ActivePPE = next
	return ppe, nil
}

// SetActive makes the PPE with the given id active.
func (p *Player) SetActive(id int) error {
	for _, ppe := range p.PPEs {
		if ppe.ID == id {
			p.ActivePPE = id
			return nil
		}
	}
	return fmt.Errorf("%w: #%d", ErrPPENotFound, id)
}

// AddPoints adjusts the active PPE by amount, which may be negative.
func (p *Player) AddPoints(amount float64) (*PPE, error) {
	ppe, err := p.Active()
	if err != nil {
		return nil, err
	}
	ppe.Points += amount
	return ppe, nil
}

// Best returns the PPE with the most points, or nil when there is none.
// The lowest id wins ties.
func (p *Player) Best() *PPE {
	var best *PPE
	for _, ppe := range p.PPEs {
		if best == nil || ppe.Points > best.Points || (ppe.Points == best.Points && ppe.ID < best.ID) {
			best = ppe
		}
	}
	return best
}

// Records is the state of one guild, keyed by lower-cased player name.
type Records map[string]*Player

// Key normalizes a player name to its record key.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Member returns a contest member by name.
func (r Records) Member(name string) (*Player, error) {
	p, ok := r[Key(name)]
	if !ok || !p.IsMember {
		return nil, fmt.Errorf("%w: %s", ErrNotMember, name)
	}
	return p, nil
}

// AddPlayer enrolls a player with an active PPE #1.
func (r Records) AddPlayer(name string) (*Player, error) {
	key := Key(name)
	if key == "" {
		return nil, errors.New("player name is required")
	}
	if _, ok := r[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyMember, name)
	}

	p := &Player{IsMember: true}
	if _, err := p.NewPPE(0); err != nil {
		return nil, err
	}
	r[key] = p
	return p, nil
}

// RemovePlayer deletes a member and all of their PPEs.
func (r Records) RemovePlayer(name string) error {
	if _, err := r.Member(name); err != nil {
		return err
	}
	delete(r, Key(name))
	return nil
}

// Standing is one leaderboard row.
type Standing struct {
	Player string  `json:"player"`
	PPE    int     `json:"ppe"`
	Points float64 `json:"points"`
}

// Leaderboard ranks every player with at least one PPE by their best PPE,
// highest first. Equal scores are ordered by player name.
func (r Records) Leaderboard() []Standing {
	rows := make([]Standing, 0, len(r))
	for name, p := range r {
		best := p.Best()
		if best == nil {
			continue
		}
		rows = append(rows, Standing{Player: name, PPE: best.ID, Points: best.Points})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Player < rows[j].Player
	})
	return rows
}
