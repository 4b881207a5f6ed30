package product

// Units (physical quantities) of the bands
const (
	UnitAmplitude = "amplitude"
	UnitIntensity = "intensity"
	UnitReal      = "real"
	UnitImaginary = "imaginary"
	UnitPhase     = "phase"
	UnitAbsPhase  = "abs_phase" // Unwrapped (absolute) phase
	UnitCoherence = "coherence"
	UnitMeters    = "meters"
)
