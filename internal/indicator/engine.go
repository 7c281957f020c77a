package indicator

// engine.go: derives the per-ticker signal columns the strategy consumes.
//
// Every value at index i is computed from bars 0..i only. Rows without
// enough trailing history get domain.Undefined, never zero; ranking and
// signal evaluation skip undefined rows.

import (
	"math"

	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/strategy"
)

const (
	slopeWindow     = 5
	liquidityWindow = 20

	// Momentum horizons in trading days: 1, 3, 6 and 12 months.
	horizon1m  = 20
	horizon3m  = 60
	horizon6m  = 120
	horizon12m = 250
)

// Compute builds the derived series for one ticker from its full bar
// history (warm-up included). Bars must be ascending by date.
func Compute(ticker string, bars []domain.Bar, cfg strategy.Config) *domain.Series {
	s := domain.NewSeries(ticker, len(bars))
	for i, b := range bars {
		s.SetDate(i, b.Date)
		s.Open[i] = b.Open
		s.High[i] = b.High
		s.Low[i] = b.Low
		s.Close[i] = b.Close
		s.Volume[i] = b.Volume
		s.Turnover[i] = b.EffectiveTurnover()
	}

	rollingMean(s.Close, cfg.MAShort, s.MAShort)
	rollingMean(s.Close, cfg.MALong, s.MALong)
	rollingMean(s.Turnover, liquidityWindow, s.LiquidityMA)
	slopes(s)
	maxUpSlope(s, cfg.SlopeLookback)
	momentum(s, cfg.RSWeights)

	return s
}

// rollingMean writes the simple moving average of src over the trailing
// window into dst, Undefined until the window fills.
func rollingMean(src []float64, window int, dst []float64) {
	var sum float64
	for i := range src {
		sum += src[i]
		if i >= window {
			sum -= src[i-window]
		}
		if i >= window-1 {
			dst[i] = sum / float64(window)
		} else {
			dst[i] = domain.Undefined
		}
	}
}

// slopes fills SlopeRaw and SlopePct with the 5-point OLS slope of close
// against 0..4, closed form: slope = (5·Σ(j·c_j) − 10·Σc_j) / 50.
func slopes(s *domain.Series) {
	for i := range s.Close {
		if i < slopeWindow-1 {
			s.SlopeRaw[i] = domain.Undefined
			s.SlopePct[i] = domain.Undefined
			continue
		}
		var wsum, sum float64
		for j := 0; j < slopeWindow; j++ {
			c := s.Close[i-slopeWindow+1+j]
			wsum += float64(j) * c
			sum += c
		}
		slope := (float64(slopeWindow)*wsum - 10*sum) / 50
		s.SlopeRaw[i] = slope
		s.SlopePct[i] = slope / s.Close[i] * 100
	}
}

// maxUpSlope fills the rolling maximum of positive SlopePct over the
// lookback window of strictly prior days: the value at i covers
// i−lookback .. i−1, never i itself, so today's slope cannot inflate its
// own historical ceiling. Undefined SlopePct rows contribute 0.
func maxUpSlope(s *domain.Series, lookback int) {
	for i := range s.SlopePct {
		if i < lookback {
			s.MaxUpSlope[i] = domain.Undefined
			continue
		}
		maxUp := 0.0
		for j := i - lookback; j < i; j++ {
			if v := s.SlopePct[j]; domain.Defined(v) && v > maxUp {
				maxUp = v
			}
		}
		s.MaxUpSlope[i] = maxUp
	}
}

// momentum fills the RS score: weighted percentage returns over the
// 1/3/6/12-month horizons, ×100. Undefined until the longest horizon is
// available, so every horizon contributes.
func momentum(s *domain.Series, w strategy.RSWeights) {
	for i := range s.Close {
		if i < horizon12m {
			s.Momentum[i] = domain.Undefined
			continue
		}
		r1 := ret(s.Close, i, horizon1m)
		r3 := ret(s.Close, i, horizon3m)
		r6 := ret(s.Close, i, horizon6m)
		r12 := ret(s.Close, i, horizon12m)
		s.Momentum[i] = (w.M3*r3 + w.M6*r6 + w.M12*r12 + w.M1*r1) * 100
	}
}

func ret(close []float64, i, periods int) float64 {
	prev := close[i-periods]
	if prev == 0 {
		return 0
	}
	return (close[i] - prev) / prev
}

// ATR returns the average true range over the trailing window ending at
// index i: mean of max(high−low, |high−prevClose|, |low−prevClose|).
// Requires window+1 bars so every true range has a previous close;
// returns 0 otherwise, which sizing treats as "no trade".
func ATR(s *domain.Series, i, window int) float64 {
	if i+1 < window+1 {
		return 0
	}
	var sum float64
	for j := i - window + 1; j <= i; j++ {
		prevClose := s.Close[j-1]
		tr := s.High[j] - s.Low[j]
		if v := math.Abs(s.High[j] - prevClose); v > tr {
			tr = v
		}
		if v := math.Abs(s.Low[j] - prevClose); v > tr {
			tr = v
		}
		sum += tr
	}
	return sum / float64(window)
}
