package domain

// CorrectMPPTDips returns a copy of series with isolated MPPT sweep dips
// repaired, and the indices it replaced.
//
// While the charge controller sweeps the I-V curve the measured power
// collapses for a single sample even though irradiance holds. An interior
// sample qualifies when its irradiance ratio to the mean of its two neighbours
// exceeds t.IrradianceRatio and its power ratio falls below t.PowerRatio.
// Power, voltage and current are then replaced by the neighbour means;
// irradiance is kept as measured.
//
// The first and last samples are never touched. Neighbour means are always read
// from the input, so a repaired sample never feeds the test of the next one.
// Samples whose neighbour irradiance or power mean is zero are skipped.
// Neighbours are positional: a gap in the sampling is not detected.
func CorrectMPPTDips(series Series, t DipThresholds) (Series, []int) {
	out := series.Clone()
	var fixed []int

	for i := 1; i < len(series)-1; i++ {
		prev, cur, next := series[i-1], series[i], series[i+1]

		irrMean := (prev.Irradiance + next.Irradiance) / 2
		powerMean := (prev.Power + next.Power) / 2
		if irrMean == 0 || powerMean == 0 {
			continue
		}

		if cur.Irradiance/irrMean > t.IrradianceRatio && cur.Power/powerMean < t.PowerRatio {
			out[i].Power = powerMean
			out[i].Voltage = (prev.Voltage + next.Voltage) / 2
			out[i].Current = (prev.Current + next.Current) / 2
			fixed = append(fixed, i)
		}
	}

	return out, fixed
}
