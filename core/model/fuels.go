package model

// Fuels is the market snapshot used for one production plan. Missing values
// decode to zero.
type Fuels struct {
	// Gas is the natural gas price in €/MWh.
	Gas float64 `json:"gas(euro/MWh)" yaml:"gas"`
	// Kerosine is the kerosine price in €/MWh.
	Kerosine float64 `json:"kerosine(euro/MWh)" yaml:"kerosine"`
	// CO2 is the emission allowance price in €/ton.
	CO2 float64 `json:"co2(euro/ton)" yaml:"co2"`
	// Wind is the available wind in percent.
	Wind float64 `json:"wind(%)" yaml:"wind"`
}

// WindFraction returns the wind availability as a fraction in [0,1].
// Out of range percentages are clamped.
func (f Fuels) WindFraction() float64 {
	w := f.Wind / 100
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
