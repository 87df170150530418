// Package consts collects the numerical and physical defaults referenced
// throughout the simulator so no package hard-codes a tolerance twice.
package consts

const (
	BoltzmannJPerK = 1.3806226e-23 // J/K
	ElemCharge     = 1.6021918e-19 // C
	RoomTempKelvin = 300.15        // 27 degC
)

// Assembler / linear-algebra defaults (spec.md SS4.1, SS4.3).
const (
	DefaultGmin     = 1e-9
	DefaultPivotTol = 1e-12
)

// LCP solver defaults (spec.md SS4.5).
const (
	DefaultLCPMaxIters  = 20000
	DefaultLCPPivotTol  = 1e-10
	DefaultLCPZeroTol   = 1e-12
	DefaultQPTol        = 1e-8
	QPBarrierInit       = 0.1
	QPBarrierShrink     = 0.3
	QPBarrierFloor      = 1e-12
	QPConditionCeiling  = 1e10
	QPDiagRegularizer   = 1e-6
	QPBarrierEveryIters = 10
)

// Progressive regularization outer loop (spec.md SS4.5.3): attempt k in {1,2,3}
// adds 10^(k-9) to the diagonal.
const RegularizationBase = 10.0
const RegularizationExponentOffset = 9

// Tolerances for the end-of-step invariants (spec.md SS3). Neither the
// driver nor the solvers reference them; no step checks these invariants.
const (
	DefaultComplementarityTol = 1e-9
	DefaultKCLResidualTol     = 1e-9
)
