package model

type CommandType uint8

const (
	CmdUnknown CommandType = iota
	CmdQuote
	CmdBestBid
	CmdBestAsk
	CmdSizeAtPrice
	CmdMarketOrder
)

func (t CommandType) String() string {
	switch t {
	case CmdQuote:
		return "quote"
	case CmdBestBid:
		return "best_bid"
	case CmdBestAsk:
		return "best_ask"
	case CmdSizeAtPrice:
		return "size"
	case CmdMarketOrder:
		return "market_order"
	default:
		return "unknown"
	}
}

// Command is one parsed line of the command log. Which fields are set
// depends on Type:
//
//	CmdQuote        Side, Price, Size
//	CmdSizeAtPrice  Price
//	CmdMarketOrder  Side (the side being consumed), Size
type Command struct {
	Type  CommandType
	Side  Side
	Price Price
	Size  Quantity
}
