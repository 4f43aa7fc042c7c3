package kde

const (
	// base bandwidth is N^(-DefaultHExponent) unless overridden
	DefaultHExponent = 0.2

	// sensitivity of the adaptive local bandwidth factors to the pilot density
	DefaultGamma = 0.5

	// pilot densities and their geometric mean are floored here before dividing
	DensityFloor = 1e-10
	LambdaFloor  = 1e-10

	// number of float64 cells one evaluation chunk may hold (32 MiB)
	DefaultMemoryBudget = 1 << 22
)

// exp(x) underflows to 0 below this
const minExpArg = -745.1332191019411
