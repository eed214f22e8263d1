package model

type Price uint64
type Quantity uint64
type Side int8

const (
	BID Side = iota
	ASK
)

func (s Side) String() string {
	switch s {
	case BID:
		return "bid"
	case ASK:
		return "ask"
	default:
		return "unknown"
	}
}

// Opposite returns the side a quote on s must not cross.
func (s Side) Opposite() Side {
	if s == BID {
		return ASK
	}
	return BID
}
