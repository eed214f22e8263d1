package model

type MarketDepthLevel struct {
	Price  Price    `json:"price"`
	Volume Quantity `json:"volume"`
}

// MarketDepth represents the live levels of the book
type MarketDepth struct {
	Bids []MarketDepthLevel `json:"bids"` // Highest to lowest price
	Asks []MarketDepthLevel `json:"asks"` // Lowest to highest price
}

// TopOfBook represents best bid/ask
type TopOfBook struct {
	BestBid *MarketDepthLevel `json:"bestBid"`
	BestAsk *MarketDepthLevel `json:"bestAsk"`
	Spread  int64             `json:"spread"` // negative when the book is crossed across prices
}
