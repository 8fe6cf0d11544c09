package enums

type Direction string

const (
	DirectionLike Direction = "like"
	DirectionPass Direction = "pass"
)

func (d Direction) Valid() bool {
	return d == DirectionLike || d == DirectionPass
}

func ParseDirection(raw string) (Direction, bool) {
	switch Direction(raw) {
	case DirectionLike, DirectionPass:
		return Direction(raw), true
	default:
		return "", false
	}
}
