package effects

// EQParams sets linear band gains (1 = unity) and the two crossovers.
type EQParams struct {
	Low, Mid, High float64
	LowHz, HighHz  float64
}

func DefaultEQParams() EQParams {
	return EQParams{Low: 1, Mid: 1, High: 1, LowHz: 300, HighHz: 3000}
}

func (p *EQParams) fields() []*float64 {
	return []*float64{&p.Low, &p.Mid, &p.High, &p.LowHz, &p.HighHz}
}

// EQ3Band splits each channel with two one-pole lowpasses: below LowHz is
// the low band, above HighHz the high band, and the remainder is mid.
type EQ3Band struct {
	gains    EQParams
	low, top *onePole
}

func NewEQ3Band(sampleRate int, p EQParams) *EQ3Band {
	return &EQ3Band{
		gains: p,
		low:   newOnePole(sampleRate, p.LowHz),
		top:   newOnePole(sampleRate, p.HighHz),
	}
}

func (eq *EQ3Band) Process(l, r float64) (float64, float64) {
	lowL, lowR := eq.low.process(l, r)
	topL, topR := eq.top.process(l, r)
	return eq.weigh(l, lowL, topL), eq.weigh(r, lowR, topR)
}

func (eq *EQ3Band) weigh(in, low, belowHigh float64) float64 {
	high := in - belowHigh
	mid := in - low - high
	return low*eq.gains.Low + mid*eq.gains.Mid + high*eq.gains.High
}

func (eq *EQ3Band) Reset() {
	eq.low.reset()
	eq.top.reset()
}
