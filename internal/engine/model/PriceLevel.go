package model

import (
	"github.com/Yusufzhafir/go-orderbook/replay/pkg/model"
	"github.com/google/btree"
)

// PriceLevel is the aggregate resting size at one price on one side.
// A level stays in its tree after its size drops to zero.
type PriceLevel interface {
	btree.Item
	GetPrice() model.Price
	GetSize() model.Quantity
	SetSize(size model.Quantity)
	IsLive() bool
}

// NewPriceLevel returns an empty level ordered for the given side. It also
// serves as a lookup key for btree Get/Has.
func NewPriceLevel(side model.Side, price model.Price) PriceLevel {
	if side == model.BID {
		return &BidPriceLevel{Price: price}
	}
	return &AskPriceLevel{Price: price}
}

// AskPriceLevel ascending
type AskPriceLevel struct {
	Price model.Price
	Size  model.Quantity
}

func (pl *AskPriceLevel) Less(than btree.Item) bool {
	other := than.(*AskPriceLevel)
	return pl.Price < other.Price
}

func (pl *AskPriceLevel) GetPrice() model.Price       { return pl.Price }
func (pl *AskPriceLevel) GetSize() model.Quantity     { return pl.Size }
func (pl *AskPriceLevel) SetSize(size model.Quantity) { pl.Size = size }
func (pl *AskPriceLevel) IsLive() bool                { return pl.Size > 0 }

// BidPriceLevel descending
type BidPriceLevel struct {
	Price model.Price
	Size  model.Quantity
}

func (bpl *BidPriceLevel) Less(than btree.Item) bool {
	other := than.(*BidPriceLevel)
	return bpl.Price > other.Price // Reverse
}

func (bpl *BidPriceLevel) GetPrice() model.Price       { return bpl.Price }
func (bpl *BidPriceLevel) GetSize() model.Quantity     { return bpl.Size }
func (bpl *BidPriceLevel) SetSize(size model.Quantity) { bpl.Size = size }
func (bpl *BidPriceLevel) IsLive() bool                { return bpl.Size > 0 }
