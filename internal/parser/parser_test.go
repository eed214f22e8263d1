package parser

import (
	"math"
	"testing"

	"github.com/Yusufzhafir/go-orderbook/replay/pkg/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidCommands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.Command
	}{
		{"best bid", "q,best_bid", model.Command{Type: model.CmdBestBid}},
		{"best ask", "q,best_ask", model.Command{Type: model.CmdBestAsk}},
		{"size query", "q,size,10", model.Command{Type: model.CmdSizeAtPrice, Price: 10}},
		{"buy consumes asks", "o,buy,8", model.Command{Type: model.CmdMarketOrder, Side: model.ASK, Size: 8}},
		{"sell consumes bids", "o,sell,3", model.Command{Type: model.CmdMarketOrder, Side: model.BID, Size: 3}},
		{"negative order size", "o,sell,-7", model.Command{Type: model.CmdMarketOrder, Side: model.BID, Size: 7}},
		{"bid quote", "u,9,4,bid", model.Command{Type: model.CmdQuote, Side: model.BID, Price: 9, Size: 4}},
		{"ask quote", "u,10,5,ask", model.Command{Type: model.CmdQuote, Side: model.ASK, Price: 10, Size: 5}},
		{"zero size quote", "u,10,0,ask", model.Command{Type: model.CmdQuote, Side: model.ASK, Price: 10}},
		{"crlf line", "u,10,5,ask\r", model.Command{Type: model.CmdQuote, Side: model.ASK, Price: 10, Size: 5}},
		{"spaces around fields", "q, size , 12", model.Command{Type: model.CmdSizeAtPrice, Price: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnknownFieldCount(t *testing.T) {
	for _, line := range []string{"", "q", "u,1,2,bid,extra", "a,b,c,d,e,f"} {
		got, err := Parse(line)
		require.NoError(t, err, line)
		assert.Equal(t, model.CmdUnknown, got.Type, line)
	}
}

func TestParseErrors(t *testing.T) {
	lines := []string{
		"q,best_mid",
		"x,best_bid",
		"q,size,abc",
		"q,size,-1",
		"o,hold,5",
		"o,buy,1.5",
		"x,buy,5",
		"u,10,5,mid",
		"u,ten,5,bid",
		"u,10,five,ask",
		"u,-10,5,ask",
		"u,10,-5,ask",
		"q,10,5,bid",
	}
	for _, line := range lines {
		_, err := Parse(line)
		assert.True(t, errors.Is(err, ErrParse), "line %q: got %v", line, err)
	}
}

func TestParseMinInt64OrderSize(t *testing.T) {
	got, err := Parse("o,buy,-9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, model.Quantity(math.MaxInt64)+1, got.Size)
}
