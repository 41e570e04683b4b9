package simulator

import (
	"math/rand"
)

// Heating and cooling rates, in °C per tick.
const (
	RampUpCPerTick   = 3.0
	CoolDownCPerTick = 0.5
)

// Model is a sensor that sits near ambient temperature and periodically
// heats up to a peak before drifting back.
type Model struct {
	AmbientC  float64
	PeakC     float64
	NoiseC    float64 // standard deviation of the noise added to each sample
	SpikeEach int     // ticks between spikes; 0 disables spikes

	rnd     *rand.Rand
	tick    int
	current float64
	heating bool
}

func NewModel(ambientC, peakC, noiseC float64, spikeEach int, seed int64) *Model {
	return &Model{
		AmbientC:  ambientC,
		PeakC:     peakC,
		NoiseC:    noiseC,
		SpikeEach: spikeEach,
		rnd:       rand.New(rand.NewSource(seed)), // #nosec G404 -- synthetic data
		current:   ambientC,
	}
}

// Next advances one tick and returns the sampled temperature.
func (m *Model) Next() float64 {
	m.tick++
	if m.SpikeEach > 0 && m.tick%m.SpikeEach == 0 {
		m.heating = true
	}

	if m.heating {
		m.rampUp()
	} else {
		m.driftToAmbient()
	}

	if m.NoiseC <= 0 {
		return m.current
	}
	return m.current + m.rnd.NormFloat64()*m.NoiseC
}

// Current is the noiseless temperature after the last tick.
func (m *Model) Current() float64 { return m.current }

// rampUp heats toward the peak and ends the spike once it is reached.
func (m *Model) rampUp() {
	m.current = minFloat(m.current+RampUpCPerTick, m.PeakC)
	if m.current >= m.PeakC {
		m.heating = false
	}
}

// driftToAmbient cools toward ambient, clamping at it.
func (m *Model) driftToAmbient() {
	if m.current > m.AmbientC {
		m.current = maxFloat(m.current-CoolDownCPerTick, m.AmbientC)
	}
}

// helpers
func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}
