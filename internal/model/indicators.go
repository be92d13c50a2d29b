package model

import (
	"math"
	"strconv"
)

// Column is a derived indicator series. NaN marks bars where the value is undefined.
type Column []float64

// At returns the value at i, or NaN when i is out of range.
func (c Column) At(i int) float64 {
	if i < 0 || i >= len(c) {
		return math.NaN()
	}
	return c[i]
}

// Last returns the final value, or NaN for an empty column.
func (c Column) Last() float64 {
	return c.At(len(c) - 1)
}

// MarshalJSON writes undefined values as null.
func (c Column) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 2+len(c)*8)
	buf = append(buf, '[')
	for i, v := range c {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, v, 'f', -1, 64)
	}
	buf = append(buf, ']')
	return buf, nil
}

// Defined reports whether v holds a value.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// Ptr returns nil for undefined values, for JSON fields that should be null.
func Ptr(v float64) *float64 {
	if !Defined(v) {
		return nil
	}
	return &v
}

// Frame is a price series extended with indicator columns of the same length.
type Frame struct {
	PriceSeries
	SMA20      Column `json:"sma_20"`
	EMA20      Column `json:"ema_20"`
	RSI        Column `json:"rsi"`
	MACD       Column `json:"macd"`
	MACDSignal Column `json:"macd_signal"`
	MACDHist   Column `json:"macd_hist"`
	BBUpper    Column `json:"bb_upper"`
	BBMiddle   Column `json:"bb_middle"`
	BBLower    Column `json:"bb_lower"`
}

// Bar is the indicator snapshot at a single index.
type Bar struct {
	Close      float64
	Volume     float64
	SMA20      float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	BBUpper    float64
	BBLower    float64
}

// BarAt extracts the snapshot at index i.
func (f *Frame) BarAt(i int) Bar {
	return Bar{
		Close:      Column(f.Close).At(i),
		Volume:     Column(f.Volume).At(i),
		SMA20:      f.SMA20.At(i),
		RSI:        f.RSI.At(i),
		MACD:       f.MACD.At(i),
		MACDSignal: f.MACDSignal.At(i),
		BBUpper:    f.BBUpper.At(i),
		BBLower:    f.BBLower.At(i),
	}
}
