package replay

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Yusufzhafir/go-orderbook/replay/internal/engine"
	"github.com/Yusufzhafir/go-orderbook/replay/pkg/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReplay(t *testing.T, halt bool) ReplayUseCase {
	t.Helper()
	ob := engine.NewOrderBookEngine(nil)
	ob.Initialize()
	return NewReplayUseCase(ReplayUseCaseOpts{
		OrderBookEngine: ob,
		HaltOnEmptyBook: halt,
	})
}

func runLines(t *testing.T, ru ReplayUseCase, lines ...string) (string, Result, error) {
	t.Helper()
	var out bytes.Buffer
	result, err := ru.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out)
	return out.String(), result, err
}

func TestScenarioBestAskAfterQuote(t *testing.T) {
	out, _, err := runLines(t, newTestReplay(t, true), "u,10,5,ask", "q,best_ask")
	require.NoError(t, err)
	assert.Equal(t, "10,5\n", out)
}

func TestScenarioMultiLevelBuy(t *testing.T) {
	out, _, err := runLines(t, newTestReplay(t, true),
		"u,10,5,ask",
		"u,12,5,ask",
		"o,buy,8",
		"q,size,10",
		"q,size,12",
		"q,best_ask",
	)
	require.NoError(t, err)
	assert.Equal(t, "0\n2\n12,2\n", out)
}

func TestScenarioCrossedQuoteRejected(t *testing.T) {
	out, result, err := runLines(t, newTestReplay(t, true), "u,10,5,bid", "u,10,3,ask", "q,size,10")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, 2, result.Applied)
}

func TestScenarioEmptyBookHalts(t *testing.T) {
	out, result, err := runLines(t, newTestReplay(t, true), "u,10,5,ask", "q,best_ask", "q,best_bid", "q,best_ask")
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrEmptyBook))
	assert.Contains(t, err.Error(), "line 3")
	assert.Equal(t, "10,5\n", out, "output before the failure is flushed")
	assert.Equal(t, 3, result.LinesRead)
}

func TestScenarioSelfCancel(t *testing.T) {
	out, _, err := runLines(t, newTestReplay(t, true), "u,10,5,ask", "u,10,0,ask", "q,size,10")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestSizeQueryUnknownPrice(t *testing.T) {
	out, _, err := runLines(t, newTestReplay(t, true), "u,10,5,ask", "q,size,11")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestSizeQueryEmitsAskBeforeBid(t *testing.T) {
	out, _, err := runLines(t, newTestReplay(t, true),
		"u,10,5,ask",
		"o,buy,5",
		"u,10,4,bid",
		"q,size,10",
	)
	require.NoError(t, err)
	assert.Equal(t, "0\n4\n", out)
}

func TestSellOrderWalksBids(t *testing.T) {
	out, _, err := runLines(t, newTestReplay(t, true),
		"u,9,1,bid",
		"u,8,2,bid",
		"u,7,10,bid",
		"o,sell,4",
		"q,best_bid",
	)
	require.NoError(t, err)
	assert.Equal(t, "7,9\n", out)
}

func TestParseErrorsAreSkipped(t *testing.T) {
	out, result, err := runLines(t, newTestReplay(t, true),
		"u,ten,5,ask",
		"q,best_mid",
		"",
		"u,10,5,ask",
		"just,some,more,fields,here",
		"q,best_ask",
	)
	require.NoError(t, err)
	assert.Equal(t, "10,5\n", out)
	assert.Equal(t, Result{LinesRead: 6, Applied: 2, Skipped: 2, Emitted: 1}, result)
}

func TestEmptyBookSkippedWhenNotHalting(t *testing.T) {
	out, result, err := runLines(t, newTestReplay(t, false),
		"q,best_bid",
		"o,buy,3",
		"u,10,5,ask",
		"o,buy,3",
		"q,best_ask",
	)
	require.NoError(t, err)
	assert.Equal(t, "10,2\n", out)
	assert.Equal(t, 2, result.Skipped)
}

func TestMarketOrderFailureLeavesBook(t *testing.T) {
	ru := newTestReplay(t, false)
	out, _, err := runLines(t, ru, "u,10,5,ask", "o,buy,6", "q,best_ask")
	require.NoError(t, err)
	assert.Equal(t, "10,5\n", out)
}

func TestCRLFInput(t *testing.T) {
	var out bytes.Buffer
	_, err := newTestReplay(t, true).Run(context.Background(), strings.NewReader("u,10,5,bid\r\nq,best_bid\r\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "10,5\n", out.String())
}

func TestRunHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := newTestReplay(t, true).Run(ctx, strings.NewReader("u,10,5,ask\nq,best_ask\n"), &out)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, out.String())
}

func TestExecute(t *testing.T) {
	ru := newTestReplay(t, true)

	lines, err := ru.Execute(model.Command{Type: model.CmdQuote, Side: model.BID, Price: 9, Size: 3})
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = ru.Execute(model.Command{Type: model.CmdBestBid})
	require.NoError(t, err)
	assert.Equal(t, []string{"9,3"}, lines)

	lines, err = ru.Execute(model.Command{Type: model.CmdUnknown})
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = ru.Execute(model.Command{Type: model.CmdBestAsk})
	assert.True(t, errors.Is(err, engine.ErrEmptyBook))

	tob := ru.GetTopOfBook()
	require.NotNil(t, tob.BestBid)
	assert.Nil(t, tob.BestAsk)

	depth := ru.GetMarketDepth(5)
	assert.Equal(t, []model.MarketDepthLevel{{Price: 9, Volume: 3}}, depth.Bids)
}
