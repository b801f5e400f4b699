package kernel

// Pairwise addition kernels over pre-aligned flat arrays, one per input and
// output width combination. These consume exploded output, where both
// operands have already been broadcast to equal length.
//
// Integer addition wraps modulo 2^64 (two's complement). Mixed operands
// promote the integer to float64 with round-to-nearest-even; float addition
// is IEEE-754 binary64.

// PlusInt64 computes out[i] = in1[i] + in2[i] over int64 operands.
func PlusInt64(in1, in2, out []int64) {
	n := min(len(in1), len(in2), len(out))
	for i := 0; i < n; i++ {
		out[i] = in1[i] + in2[i]
	}
}

// PlusInt64Float64 adds an int64 array to a float64 array, promoting the
// integers to float64.
func PlusInt64Float64(in1 []int64, in2 []float64, out []float64) {
	n := min(len(in1), len(in2), len(out))
	for i := 0; i < n; i++ {
		out[i] = float64(in1[i]) + in2[i]
	}
}

// PlusFloat64Int64 adds a float64 array to an int64 array, promoting the
// integers to float64.
func PlusFloat64Int64(in1 []float64, in2 []int64, out []float64) {
	n := min(len(in1), len(in2), len(out))
	for i := 0; i < n; i++ {
		out[i] = in1[i] + float64(in2[i])
	}
}

// PlusFloat64 computes out[i] = in1[i] + in2[i] over float64 operands.
func PlusFloat64(in1, in2, out []float64) {
	n := min(len(in1), len(in2), len(out))
	for i := 0; i < n; i++ {
		out[i] = in1[i] + in2[i]
	}
}
