package model

// Fill is the part of a market order absorbed by one price level.
type Fill struct {
	Side     Side
	Price    Price
	Quantity Quantity
}
