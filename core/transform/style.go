package transform

import (
	"context"
	"regexp"
	"strconv"

	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/models"
)

// rpxScale converts rpx to rem.
const rpxScale = 100

var rpxRegex = regexp.MustCompile(`(\d*\.?\d+)rpx`)

// Style rewrites stylesheet units. It needs no syntax tree.
type Style struct {
	asset *models.Asset
	sink  Sink
}

func NewStyle(asset *models.Asset, sink Sink) *Style {
	return &Style{asset: asset, sink: sink}
}

func (s *Style) Asset() *models.Asset {
	return s.asset
}

func (s *Style) Render(_ context.Context, src []byte) ([]byte, error) {
	return ConvertRPX(src), nil
}

func (s *Style) Transform(ctx context.Context) (Result, error) {
	if err := s.asset.Read(); err != nil {
		return Result{}, err
	}

	out, err := s.Render(ctx, s.asset.Content())
	if err != nil {
		return Result{}, err
	}
	s.asset.SetContent(out)

	written, err := s.sink.Write(s.asset, out)
	if err != nil {
		return Result{}, err
	}

	logger.Debug("Transformed stylesheet %s", s.asset.RelativePath)
	return Result{Bytes: int64(len(out)), Written: written}, nil
}

// ConvertRPX replaces every <N>rpx with <N/100>rem.
func ConvertRPX(src []byte) []byte {
	return rpxRegex.ReplaceAllFunc(src, func(m []byte) []byte {
		num := m[:len(m)-len("rpx")]
		n, err := strconv.ParseFloat(string(num), 64)
		if err != nil {
			return m
		}
		return []byte(strconv.FormatFloat(n/rpxScale, 'f', -1, 64) + "rem")
	})
}
