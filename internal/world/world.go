package world

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/DoyleJ11/arena-sync/pkg/types"
)

type Hex struct {
	Q int `json:"q"`
	R int `json:"r"`
}

func (h Hex) String() string { return fmt.Sprintf("(%d,%d)", h.Q, h.R) }

// Distance is the hex step count between two axial coordinates.
func (h Hex) Distance(o Hex) int {
	dq := abs(h.Q - o.Q)
	dr := abs(h.R - o.R)
	ds := abs((-h.Q - h.R) - (-o.Q - o.R))
	return max(dq, dr, ds)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type Food struct {
	Amount int      `json:"amount"`
	Type   FoodType `json:"type"`
}

type Ant struct {
	ID           string  `json:"id"`
	Type         AntType `json:"type"`
	Position     Hex     `json:"position"`
	Health       int     `json:"health"`
	MaxHealth    int     `json:"max_health"`
	Food         Food    `json:"food"`
	LastMove     []Hex   `json:"last_move,omitempty"`
	Move         []Hex   `json:"move,omitempty"`
	LastAttack   *Hex    `json:"last_attack,omitempty"`
	LastEnemyAnt string  `json:"last_enemy_ant,omitempty"`
}

type Enemy struct {
	Type     AntType `json:"type"`
	Position Hex     `json:"position"`
	Health   int     `json:"health"`
	Food     Food    `json:"food"`
	Attack   int     `json:"attack"`
}

type FoodOnMap struct {
	Position Hex      `json:"position"`
	Amount   int      `json:"amount"`
	Type     FoodType `json:"type"`
}

type Tile struct {
	Position Hex      `json:"position"`
	Type     TileType `json:"type"`
	Cost     int      `json:"cost"`
}

// State is one complete arena snapshot. It is built once by FromArena and not
// modified afterwards, so it can be handed to other goroutines as is.
type State struct {
	Ants       map[string]Ant    `json:"ants"`
	Enemies    map[string]Enemy  `json:"enemies"`
	Food       map[Hex]FoodOnMap `json:"-"`
	Tiles      map[Hex]Tile      `json:"-"`
	Home       []Hex             `json:"home"`
	Spot       Hex               `json:"spot"`
	Turn       int               `json:"turn"`
	Score      int               `json:"score"`
	NextTurnIn time.Duration     `json:"-"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func NewEmptyState() State {
	return State{
		Ants:    map[string]Ant{},
		Enemies: map[string]Enemy{},
		Food:    map[Hex]FoodOnMap{},
		Tiles:   map[Hex]Tile{},
		Home:    []Hex{},
	}
}

// EnemyID names an enemy by where it stands; the server sends no ids for them.
func EnemyID(pos Hex) string {
	return fmt.Sprintf("enemy_%d_%d", pos.Q, pos.R)
}

func hexFrom(h types.Hex) Hex { return Hex{Q: h.Q, R: h.R} }

func hexesFrom(in []types.Hex) []Hex {
	if len(in) == 0 {
		return nil
	}
	out := make([]Hex, len(in))
	for i, h := range in {
		out[i] = hexFrom(h)
	}
	return out
}

func foodFrom(f types.Food) Food {
	return Food{Amount: f.Amount, Type: FoodType(f.Type)}
}

// FromArena builds a fresh State from a server response. Nothing from any
// previous State survives.
func FromArena(resp types.ArenaResponse, now time.Time) State {
	s := NewEmptyState()
	s.Spot = hexFrom(resp.Spot)
	s.Turn = resp.TurnNo
	s.Score = resp.Score
	s.NextTurnIn = time.Duration(resp.NextTurnIn * float64(time.Second))
	s.UpdatedAt = now

	for _, a := range resp.Ants {
		kind := AntTypeFromAPI(a.Type)
		ant := Ant{
			ID:        a.ID,
			Type:      kind,
			Position:  Hex{Q: a.Q, R: a.R},
			Health:    a.Health,
			MaxHealth: kind.Health(),
			Food:      foodFrom(a.Food),
			LastMove:  hexesFrom(a.LastMove),
			Move:      hexesFrom(a.Move),
		}
		if a.LastAttack != nil {
			h := hexFrom(*a.LastAttack)
			ant.LastAttack = &h
		}
		if a.LastEnemyAnt != nil {
			ant.LastEnemyAnt = *a.LastEnemyAnt
		}
		s.Ants[ant.ID] = ant
	}

	for _, e := range resp.Enemies {
		enemy := Enemy{
			Type:     AntTypeFromAPI(e.Type),
			Position: Hex{Q: e.Q, R: e.R},
			Health:   e.Health,
			Food:     foodFrom(e.Food),
			Attack:   e.Attack,
		}
		s.Enemies[EnemyID(enemy.Position)] = enemy
	}

	for _, f := range resp.Food {
		pos := Hex{Q: f.Q, R: f.R}
		s.Food[pos] = FoodOnMap{Position: pos, Amount: f.Amount, Type: FoodType(f.Type)}
	}

	for _, t := range resp.Map {
		pos := Hex{Q: t.Q, R: t.R}
		s.Tiles[pos] = Tile{Position: pos, Type: TileTypeFromAPI(t.Type), Cost: t.Cost}
	}

	for _, h := range resp.Home {
		s.Home = append(s.Home, hexFrom(h))
	}

	return s
}

// Counts is the short summary shown next to the connection status.
type Counts struct {
	Ants    int `json:"ants"`
	Enemies int `json:"enemies"`
	Food    int `json:"food"`
	Tiles   int `json:"tiles"`
}

func (s State) Counts() Counts {
	return Counts{Ants: len(s.Ants), Enemies: len(s.Enemies), Food: len(s.Food), Tiles: len(s.Tiles)}
}

// MarshalJSON writes food and tiles as lists ordered by position, since hex
// keyed maps have no JSON form.
func (s State) MarshalJSON() ([]byte, error) {
	type alias State

	food := make([]FoodOnMap, 0, len(s.Food))
	for _, f := range s.Food {
		food = append(food, f)
	}
	slices.SortFunc(food, func(a, b FoodOnMap) int { return compareHex(a.Position, b.Position) })

	tiles := make([]Tile, 0, len(s.Tiles))
	for _, t := range s.Tiles {
		tiles = append(tiles, t)
	}
	slices.SortFunc(tiles, func(a, b Tile) int { return compareHex(a.Position, b.Position) })

	return json.Marshal(struct {
		alias
		Food       []FoodOnMap `json:"food"`
		Tiles      []Tile      `json:"tiles"`
		NextTurnIn float64     `json:"next_turn_in"`
		Counts     Counts      `json:"counts"`
	}{
		alias:      alias(s),
		Food:       food,
		Tiles:      tiles,
		NextTurnIn: s.NextTurnIn.Seconds(),
		Counts:     s.Counts(),
	})
}

func compareHex(a, b Hex) int {
	if c := cmp.Compare(a.Q, b.Q); c != 0 {
		return c
	}
	return cmp.Compare(a.R, b.R)
}
