package engine

import (
	orderbookModel "github.com/Yusufzhafir/go-orderbook/replay/internal/engine/model"
	"github.com/Yusufzhafir/go-orderbook/replay/pkg/model"
	"github.com/google/btree"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrEmptyBook is returned when an operation needs a live level on a side
// and there is none, or not enough resting size to absorb a market order.
var ErrEmptyBook = errors.New("no live price level on the book")

type OrderBookEngine interface {
	UpdateQuote(side model.Side, price model.Price, size model.Quantity) bool
	BestBid() (model.MarketDepthLevel, error)
	BestAsk() (model.MarketDepthLevel, error)
	SizeAt(price model.Price) []model.Quantity
	MarketOrder(side model.Side, size model.Quantity) ([]model.Fill, error)
	Initialize()
	LevelCount() int
	GetTopOfBook() *model.TopOfBook
	GetMarketDepth(levels int) *model.MarketDepth
}

type OrderBookEngineImpl struct {
	bids, asks *btree.BTree // price-level trees, Min() is the best price on both
	logger     *zap.Logger
}

func NewOrderBookEngine(logger *zap.Logger) OrderBookEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderBookEngineImpl{logger: logger}
}

func (o *OrderBookEngineImpl) Initialize() {
	o.bids = btree.New(32) // degree tuned for performance
	o.asks = btree.New(32)
	o.logger.Debug("order book is initialized")
}

func (o *OrderBookEngineImpl) tree(side model.Side) *btree.BTree {
	if side == model.BID {
		return o.bids
	}
	return o.asks
}

func (o *OrderBookEngineImpl) getLevel(side model.Side, price model.Price) orderbookModel.PriceLevel {
	item := o.tree(side).Get(orderbookModel.NewPriceLevel(side, price))
	if item == nil {
		return nil
	}
	return item.(orderbookModel.PriceLevel)
}

// bestLevel walks the side best-first and returns the first level with a
// nonzero size. Retained zero-size levels are skipped.
func (o *OrderBookEngineImpl) bestLevel(side model.Side) orderbookModel.PriceLevel {
	var best orderbookModel.PriceLevel
	o.tree(side).Ascend(func(item btree.Item) bool {
		level := item.(orderbookModel.PriceLevel)
		if level.IsLive() {
			best = level
			return false
		}
		return true
	})
	return best
}

// hasLiveVolume reports whether the side rests at least size in total.
// It counts down instead of summing so large sizes cannot overflow.
func (o *OrderBookEngineImpl) hasLiveVolume(side model.Side, size model.Quantity) bool {
	remaining := size
	o.tree(side).Ascend(func(item btree.Item) bool {
		levelSize := item.(orderbookModel.PriceLevel).GetSize()
		if levelSize >= remaining {
			remaining = 0
			return false
		}
		remaining -= levelSize
		return true
	})
	return remaining == 0
}

// UpdateQuote sets the resting size at price on side. A zero size clears an
// existing level, keeping it in the tree. A positive size is dropped when the
// opposite side holds live size at the same price; the return value reports
// whether the quote was applied.
func (o *OrderBookEngineImpl) UpdateQuote(side model.Side, price model.Price, size model.Quantity) bool {
	if size == 0 {
		if level := o.getLevel(side, price); level != nil {
			level.SetSize(0)
		}
		return true
	}

	if opposite := o.getLevel(side.Opposite(), price); opposite != nil && opposite.IsLive() {
		o.logger.Debug("quote rejected, would cross the book",
			zap.Stringer("side", side),
			zap.Uint64("price", uint64(price)),
			zap.Uint64("size", uint64(size)),
		)
		return false
	}

	if level := o.getLevel(side, price); level != nil {
		level.SetSize(size)
		return true
	}

	level := orderbookModel.NewPriceLevel(side, price)
	level.SetSize(size)
	o.tree(side).ReplaceOrInsert(level)
	return true
}

func (o *OrderBookEngineImpl) best(side model.Side) (model.MarketDepthLevel, error) {
	level := o.bestLevel(side)
	if level == nil {
		return model.MarketDepthLevel{}, errors.Wrapf(ErrEmptyBook, "best %s", side)
	}
	return model.MarketDepthLevel{Price: level.GetPrice(), Volume: level.GetSize()}, nil
}

// BestBid returns the highest bid price with nonzero size.
func (o *OrderBookEngineImpl) BestBid() (model.MarketDepthLevel, error) {
	return o.best(model.BID)
}

// BestAsk returns the lowest ask price with nonzero size.
func (o *OrderBookEngineImpl) BestAsk() (model.MarketDepthLevel, error) {
	return o.best(model.ASK)
}

// SizeAt returns the stored size at price for each side holding a level
// there, ask first then bid. Zero-size levels are included. An empty result
// means neither side has ever held the price.
func (o *OrderBookEngineImpl) SizeAt(price model.Price) []model.Quantity {
	sizes := make([]model.Quantity, 0, 2)
	if level := o.getLevel(model.ASK, price); level != nil {
		sizes = append(sizes, level.GetSize())
	}
	if level := o.getLevel(model.BID, price); level != nil {
		sizes = append(sizes, level.GetSize())
	}
	return sizes
}

// MarketOrder consumes size from side, best level first, moving to the next
// best level each time one is exhausted. Exhausted levels keep a zero size.
// The order is all-or-nothing: when the side cannot absorb the full size the
// book is left untouched and ErrEmptyBook is returned.
func (o *OrderBookEngineImpl) MarketOrder(side model.Side, size model.Quantity) ([]model.Fill, error) {
	if o.bestLevel(side) == nil {
		return nil, errors.Wrapf(ErrEmptyBook, "market order for %d against %s side", size, side)
	}
	if !o.hasLiveVolume(side, size) {
		return nil, errors.Wrapf(ErrEmptyBook, "market order for %d exceeds resting %s size", size, side)
	}

	// One pass best-first. Sizes are updated in place, the price key and so
	// the tree order are untouched.
	fills := make([]model.Fill, 0)
	remaining := size
	o.tree(side).Ascend(func(item btree.Item) bool {
		if remaining == 0 {
			return false
		}
		level := item.(orderbookModel.PriceLevel)
		if !level.IsLive() {
			return true
		}

		levelSize := level.GetSize()
		filled := min(levelSize, remaining)
		level.SetSize(levelSize - filled)
		remaining -= filled

		fills = append(fills, model.Fill{
			Side:     side,
			Price:    level.GetPrice(),
			Quantity: filled,
		})
		return remaining > 0
	})

	return fills, nil
}

// LevelCount returns the number of stored levels on both sides, including
// zero-size ones.
func (o *OrderBookEngineImpl) LevelCount() int {
	return o.asks.Len() + o.bids.Len()
}

// GetTopOfBook returns best bid and ask
func (o *OrderBookEngineImpl) GetTopOfBook() *model.TopOfBook {
	tob := &model.TopOfBook{}

	if bid, err := o.BestBid(); err == nil {
		tob.BestBid = &bid
	}
	if ask, err := o.BestAsk(); err == nil {
		tob.BestAsk = &ask
	}

	if tob.BestBid != nil && tob.BestAsk != nil {
		tob.Spread = int64(tob.BestAsk.Price) - int64(tob.BestBid.Price)
	}

	return tob
}

// GetMarketDepth lists up to levels live levels per side, best first.
func (o *OrderBookEngineImpl) GetMarketDepth(levels int) *model.MarketDepth {
	return &model.MarketDepth{
		Bids: o.collectDepth(model.BID, levels),
		Asks: o.collectDepth(model.ASK, levels),
	}
}

func (o *OrderBookEngineImpl) collectDepth(side model.Side, levels int) []model.MarketDepthLevel {
	depth := make([]model.MarketDepthLevel, 0, max(levels, 0))
	o.tree(side).Ascend(func(item btree.Item) bool {
		if len(depth) >= levels {
			return false // Stop iteration
		}

		level := item.(orderbookModel.PriceLevel)
		if level.IsLive() {
			depth = append(depth, model.MarketDepthLevel{
				Price:  level.GetPrice(),
				Volume: level.GetSize(),
			})
		}
		return true
	})
	return depth
}
