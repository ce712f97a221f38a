package world

type AntType int

const (
	AntWorker  AntType = 0
	AntSoldier AntType = 1
	AntScout   AntType = 2
)

// AntTypeFromAPI maps unknown codes to AntWorker.
func AntTypeFromAPI(v int) AntType {
	switch AntType(v) {
	case AntSoldier, AntScout:
		return AntType(v)
	default:
		return AntWorker
	}
}

func (a AntType) String() string {
	switch a {
	case AntSoldier:
		return "soldier"
	case AntScout:
		return "scout"
	default:
		return "worker"
	}
}

func (a AntType) Health() int {
	switch a {
	case AntSoldier:
		return 180
	case AntScout:
		return 80
	default:
		return 130
	}
}

func (a AntType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

type FoodType int

const (
	FoodNone   FoodType = 0
	FoodApple  FoodType = 1
	FoodBread  FoodType = 2
	FoodNectar FoodType = 3
)

func (f FoodType) String() string {
	switch f {
	case FoodApple:
		return "apple"
	case FoodBread:
		return "bread"
	case FoodNectar:
		return "nectar"
	default:
		return "none"
	}
}

func (f FoodType) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

type TileType int

const (
	TileAnthill TileType = 1
	TilePlain   TileType = 2
	TileDirt    TileType = 3
	TileAcid    TileType = 4
	TileRock    TileType = 5
)

// TileTypeFromAPI maps unknown codes to TilePlain.
func TileTypeFromAPI(v int) TileType {
	switch TileType(v) {
	case TileAnthill, TileDirt, TileAcid, TileRock:
		return TileType(v)
	default:
		return TilePlain
	}
}

func (t TileType) String() string {
	switch t {
	case TileAnthill:
		return "anthill"
	case TileDirt:
		return "dirt"
	case TileAcid:
		return "acid"
	case TileRock:
		return "rock"
	default:
		return "plain"
	}
}

func (t TileType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
