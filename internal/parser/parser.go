package parser

import (
	"strconv"
	"strings"

	"github.com/Yusufzhafir/go-orderbook/replay/pkg/model"
	"github.com/pkg/errors"
)

// ErrParse is returned when a line has a recognized field count but its
// markers or numbers do not form a valid command.
var ErrParse = errors.New("malformed command")

const (
	opUpdate = "u"
	opQuery  = "q"
	opOrder  = "o"

	typeBid     = "bid"
	typeAsk     = "ask"
	typeBestBid = "best_bid"
	typeBestAsk = "best_ask"
	typeSize    = "size"
	typeBuy     = "buy"
	typeSell    = "sell"

	separator = ","
)

// Parse classifies one line of the command log by its field count:
//
//	q,best_bid | q,best_ask
//	q,size,<price> | o,buy,<size> | o,sell,<size>
//	u,<price>,<size>,bid|ask
//
// Any other field count yields a CmdUnknown command and no error.
func Parse(line string) (model.Command, error) {
	fields := strings.Split(line, separator)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	switch len(fields) {
	case 2:
		return parseBestQuery(fields)
	case 3:
		if fields[1] == typeSize {
			return parseSizeQuery(fields)
		}
		return parseMarketOrder(fields)
	case 4:
		return parseQuote(fields)
	default:
		return model.Command{Type: model.CmdUnknown}, nil
	}
}

func parseBestQuery(fields []string) (model.Command, error) {
	if fields[0] != opQuery {
		return model.Command{}, errors.Wrapf(ErrParse, "unknown operation %q", fields[0])
	}
	switch fields[1] {
	case typeBestBid:
		return model.Command{Type: model.CmdBestBid}, nil
	case typeBestAsk:
		return model.Command{Type: model.CmdBestAsk}, nil
	default:
		return model.Command{}, errors.Wrapf(ErrParse, "unknown query %q", fields[1])
	}
}

func parseSizeQuery(fields []string) (model.Command, error) {
	if fields[0] != opQuery {
		return model.Command{}, errors.Wrapf(ErrParse, "unknown operation %q", fields[0])
	}
	price, err := parseUnsigned(fields[2], "price")
	if err != nil {
		return model.Command{}, err
	}
	return model.Command{Type: model.CmdSizeAtPrice, Price: model.Price(price)}, nil
}

// parseMarketOrder maps the order direction onto the side it consumes: a buy
// takes asks, a sell takes bids.
func parseMarketOrder(fields []string) (model.Command, error) {
	if fields[0] != opOrder {
		return model.Command{}, errors.Wrapf(ErrParse, "unknown operation %q", fields[0])
	}

	var side model.Side
	switch fields[1] {
	case typeBuy:
		side = model.ASK
	case typeSell:
		side = model.BID
	default:
		return model.Command{}, errors.Wrapf(ErrParse, "unknown order direction %q", fields[1])
	}

	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return model.Command{}, errors.Wrapf(ErrParse, "size %q is not an integer", fields[2])
	}
	return model.Command{Type: model.CmdMarketOrder, Side: side, Size: abs(size)}, nil
}

func parseQuote(fields []string) (model.Command, error) {
	if fields[0] != opUpdate {
		return model.Command{}, errors.Wrapf(ErrParse, "unknown operation %q", fields[0])
	}

	var side model.Side
	switch fields[3] {
	case typeBid:
		side = model.BID
	case typeAsk:
		side = model.ASK
	default:
		return model.Command{}, errors.Wrapf(ErrParse, "unknown quote side %q", fields[3])
	}

	price, err := parseUnsigned(fields[1], "price")
	if err != nil {
		return model.Command{}, err
	}
	size, err := parseUnsigned(fields[2], "size")
	if err != nil {
		return model.Command{}, err
	}

	return model.Command{
		Type:  model.CmdQuote,
		Side:  side,
		Price: model.Price(price),
		Size:  model.Quantity(size),
	}, nil
}

func parseUnsigned(field, name string) (uint64, error) {
	v, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrParse, "%s %q is not a non-negative integer", name, field)
	}
	return v, nil
}

func abs(v int64) model.Quantity {
	if v < 0 {
		// -(v+1) stays in range for math.MinInt64
		return model.Quantity(-(v + 1)) + 1
	}
	return model.Quantity(v)
}
