package replay

import (
	"bufio"
	"context"
	"io"
	"strconv"

	"github.com/Yusufzhafir/go-orderbook/replay/internal/engine"
	"github.com/Yusufzhafir/go-orderbook/replay/internal/parser"
	"github.com/Yusufzhafir/go-orderbook/replay/pkg/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxLineBytes = 1024 * 1024

type ReplayUseCase interface {
	// Execute applies one command and returns the output lines it produces,
	// without line terminators.
	Execute(cmd model.Command) ([]string, error)

	// Run replays every line of in against the book and writes the results
	// to out, one per line.
	Run(ctx context.Context, in io.Reader, out io.Writer) (Result, error)

	GetTopOfBook() *model.TopOfBook
	GetMarketDepth(levels int) *model.MarketDepth
}

// Result summarizes a replay run.
type Result struct {
	LinesRead int `json:"linesRead"`
	Applied   int `json:"applied"`
	Rejected  int `json:"rejected"`
	Skipped   int `json:"skipped"`
	Emitted   int `json:"emitted"`
}

type replayUseCaseImpl struct {
	orderBookEngine engine.OrderBookEngine
	logger          *zap.Logger
	haltOnEmptyBook bool
}

type ReplayUseCaseOpts struct {
	OrderBookEngine engine.OrderBookEngine // must already be initialized
	Logger          *zap.Logger
	HaltOnEmptyBook bool
}

func NewReplayUseCase(opts ReplayUseCaseOpts) ReplayUseCase {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &replayUseCaseImpl{
		orderBookEngine: opts.OrderBookEngine,
		logger:          logger,
		haltOnEmptyBook: opts.HaltOnEmptyBook,
	}
}

func (ru *replayUseCaseImpl) Execute(cmd model.Command) ([]string, error) {
	lines, _, err := ru.execute(cmd)
	return lines, err
}

// execute also reports whether a quote was rejected for crossing the book.
func (ru *replayUseCaseImpl) execute(cmd model.Command) ([]string, bool, error) {
	switch cmd.Type {
	case model.CmdQuote:
		accepted := ru.orderBookEngine.UpdateQuote(cmd.Side, cmd.Price, cmd.Size)
		return nil, !accepted, nil

	case model.CmdBestBid:
		best, err := ru.orderBookEngine.BestBid()
		if err != nil {
			return nil, false, err
		}
		return []string{formatLevel(best)}, false, nil

	case model.CmdBestAsk:
		best, err := ru.orderBookEngine.BestAsk()
		if err != nil {
			return nil, false, err
		}
		return []string{formatLevel(best)}, false, nil

	case model.CmdSizeAtPrice:
		sizes := ru.orderBookEngine.SizeAt(cmd.Price)
		if len(sizes) == 0 {
			return []string{"0"}, false, nil
		}
		lines := make([]string, 0, len(sizes))
		for _, size := range sizes {
			lines = append(lines, strconv.FormatUint(uint64(size), 10))
		}
		return lines, false, nil

	case model.CmdMarketOrder:
		fills, err := ru.orderBookEngine.MarketOrder(cmd.Side, cmd.Size)
		if err != nil {
			return nil, false, err
		}
		for _, fill := range fills {
			ru.logger.Debug("market order fill",
				zap.Stringer("side", fill.Side),
				zap.Uint64("price", uint64(fill.Price)),
				zap.Uint64("quantity", uint64(fill.Quantity)),
			)
		}
		return nil, false, nil

	default:
		return nil, false, nil
	}
}

func (ru *replayUseCaseImpl) Run(ctx context.Context, in io.Reader, out io.Writer) (Result, error) {
	var result Result

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	writer := bufio.NewWriter(out)

	runErr := func() error {
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			result.LinesRead++
			lineNo := result.LinesRead

			cmd, err := parser.Parse(scanner.Text())
			if err != nil {
				result.Skipped++
				ru.logger.Warn("skipping unparsable line", zap.Int("line", lineNo), zap.Error(err))
				continue
			}
			if cmd.Type == model.CmdUnknown {
				continue
			}

			lines, rejected, err := ru.execute(cmd)
			if err != nil {
				if errors.Is(err, engine.ErrEmptyBook) && !ru.haltOnEmptyBook {
					result.Skipped++
					ru.logger.Warn("skipping command on empty book", zap.Int("line", lineNo), zap.Error(err))
					continue
				}
				return errors.Wrapf(err, "line %d (%s)", lineNo, cmd.Type)
			}

			if rejected {
				result.Rejected++
				ru.logger.Debug("crossed quote dropped", zap.Int("line", lineNo))
			} else {
				result.Applied++
			}

			for _, line := range lines {
				if _, err := writer.WriteString(line + "\n"); err != nil {
					return errors.Wrap(err, "writing output")
				}
				result.Emitted++
			}
		}
		return errors.Wrap(scanner.Err(), "reading input")
	}()

	if err := writer.Flush(); err != nil && runErr == nil {
		runErr = errors.Wrap(err, "flushing output")
	}

	ru.logger.Info("replay finished",
		zap.Int("linesRead", result.LinesRead),
		zap.Int("applied", result.Applied),
		zap.Int("rejected", result.Rejected),
		zap.Int("skipped", result.Skipped),
		zap.Int("emitted", result.Emitted),
		zap.Int("levels", ru.orderBookEngine.LevelCount()),
	)

	return result, runErr
}

func (ru *replayUseCaseImpl) GetTopOfBook() *model.TopOfBook {
	return ru.orderBookEngine.GetTopOfBook()
}

func (ru *replayUseCaseImpl) GetMarketDepth(levels int) *model.MarketDepth {
	return ru.orderBookEngine.GetMarketDepth(levels)
}

func formatLevel(level model.MarketDepthLevel) string {
	return strconv.FormatUint(uint64(level.Price), 10) + "," + strconv.FormatUint(uint64(level.Volume), 10)
}
