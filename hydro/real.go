package hydro

import "math"

// Real is the floating point representation used by the solver. Change the
// alias to float32 for a single precision build; every math call in the
// package routes through the typed wrappers below so no other source edits
// are needed.
type Real = float64

func Sqrt(arg Real) Real { return Real(math.Sqrt(float64(arg))) }

func Cbrt(arg Real) Real { return Real(math.Cbrt(float64(arg))) }

func Abs(arg Real) Real { return Real(math.Abs(float64(arg))) }
