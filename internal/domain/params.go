package domain

// Processing defaults.
const (
	DefaultSmoothingWindow    = 5
	DefaultDipIrradianceRatio = 0.9
	DefaultDipPowerRatio      = 0.85

	// DefaultCoefficient is a typical system efficiency, used when simulating
	// measured power from the model.
	DefaultCoefficient = 0.88
)

// DipThresholds controls MPPT dip detection. A sample is a dip when its
// irradiance stays above IrradianceRatio of the neighbour mean while its power
// drops below PowerRatio of the neighbour mean.
type DipThresholds struct {
	IrradianceRatio float64
	PowerRatio      float64
}

// Params holds the tunable constants of the processing stages.
type Params struct {
	SmoothingWindow int
	Dip             DipThresholds
	IAM             IAMParams
}

// DefaultParams returns the stock processing parameters.
func DefaultParams() Params {
	return Params{
		SmoothingWindow: DefaultSmoothingWindow,
		Dip: DipThresholds{
			IrradianceRatio: DefaultDipIrradianceRatio,
			PowerRatio:      DefaultDipPowerRatio,
		},
		IAM: DefaultIAMParams(),
	}
}
