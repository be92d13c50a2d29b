package calculator

import "StockSentinel/internal/model"

// Fixed indicator parameters.
const (
	MAWindow      = 20
	RSIWindow     = 14
	MACDFast      = 12
	MACDSlow      = 26
	MACDSignalLen = 9
	BBWindow      = 20
	BBWidth       = 2.0
	VolumeWindow  = 20
)

// AddIndicators derives every indicator column from the series. The input is
// copied, never modified. Short series yield more undefined rows, not errors.
func AddIndicators(series *model.PriceSeries) (*model.Frame, error) {
	if series.Len() == 0 {
		return nil, model.ErrEmptySeries
	}

	f := &model.Frame{PriceSeries: series.Clone()}
	closes := f.Close

	f.SMA20 = SMA(closes, MAWindow)
	f.EMA20 = EMA(closes, MAWindow)
	f.RSI = RSI(closes, RSIWindow)
	f.MACD, f.MACDSignal, f.MACDHist = MACD(closes, MACDFast, MACDSlow, MACDSignalLen)
	f.BBUpper, f.BBMiddle, f.BBLower = Bollinger(closes, BBWindow, BBWidth)
	return f, nil
}
