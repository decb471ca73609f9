// Package domain models one day of photovoltaic sensor readings and derives a
// reference "expected power" curve from them.
//
// # Data Source
//
// A logger polls the charge controller and an irradiance sensor and appends one
// row per reading to a file named after the local date, e.g. 2022-09-14.csv:
//
//	timestamp,time,temperature,irradiance,voltage,current,power
//	1663171200,2022-09-14 09:00:00,18.4,512.0,36.2,11.1,401.8
//
// timestamp is Unix seconds; time is the same instant as local wall clock in the
// site timezone (US/Pacific unless configured).
//
// # Processing Stages
//
// Stages run in a fixed order and never modify the input:
//
//	raw rows → CorrectMPPTDips → Smooth → Estimator.Estimate → processed rows
//
// MPPT dips: the charge controller sweeps the I-V curve every few minutes to
// find the maximum power point, and the sample taken during the sweep shows
// power far below its neighbours while irradiance is unchanged. Such samples
// are replaced by the mean of their neighbours. See [CorrectMPPTDips].
//
// Smoothing: centered moving average over 5 samples, shrinking at the edges,
// rounded to two decimals. See [MovingAverage].
//
// Estimation:
//
//	sun position (NOAA series + refraction) → angle of incidence on the panel
//	→ physical IAM (Fresnel + glass absorption) → effective irradiance
//	→ PVWatts DC: P = E/1000 × pdc0 × (1 + γ(T − 25)) → × coefficient
//
// # Calibration
//
// The coefficient folds every loss PVWatts ignores (wiring, soiling,
// converter efficiency) into one scalar, fitted through the origin from
// PVWatts power and smoothed measured power. See [EstimateCoefficient].
//
// # Limitations
//
// Neighbours are adjacent rows, not adjacent seconds. Gaps in the recording
// widen the corrector and smoother windows without warning.
package domain
