package types

// Arena:
//   ants: Ant[]
//   enemies: Enemy[]
//   food: FoodOnMap[]
//   home: Hex[]
//   map: Tile[]
//   nextTurnIn: number // seconds
//   score: number
//   spot: Hex // main anthill hex
//   turnNo: number

type Hex struct {
	Q int `json:"q"`
	R int `json:"r"`
}

type Food struct {
	Amount int `json:"amount"`
	Type   int `json:"type"`
}

type Ant struct {
	ID           string  `json:"id"`
	Type         int     `json:"type"`
	Q            int     `json:"q"`
	R            int     `json:"r"`
	Health       int     `json:"health"`
	Food         Food    `json:"food"`
	LastMove     []Hex   `json:"lastMove"`
	Move         []Hex   `json:"move"`
	LastAttack   *Hex    `json:"lastAttack,omitempty"`
	LastEnemyAnt *string `json:"lastEnemyAnt,omitempty"`
}

type Enemy struct {
	Type   int  `json:"type"`
	Q      int  `json:"q"`
	R      int  `json:"r"`
	Health int  `json:"health"`
	Food   Food `json:"food"`
	Attack int  `json:"attack"`
}

type FoodOnMap struct {
	Q      int `json:"q"`
	R      int `json:"r"`
	Amount int `json:"amount"`
	Type   int `json:"type"`
}

type Tile struct {
	Q    int `json:"q"`
	R    int `json:"r"`
	Type int `json:"type"`
	Cost int `json:"cost"`
}

type ArenaResponse struct {
	Ants       []Ant       `json:"ants"`
	Enemies    []Enemy     `json:"enemies"`
	Food       []FoodOnMap `json:"food"`
	Home       []Hex       `json:"home"`
	Map        []Tile      `json:"map"`
	NextTurnIn float64     `json:"nextTurnIn"`
	Score      int         `json:"score"`
	Spot       Hex         `json:"spot"`
	TurnNo     int         `json:"turnNo"`
}
