package searcher

import "math"

type uct struct {
	c         float64
	numerator float64
}

func newUCT(c float64, N int) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{c: c, numerator: 2 * math.Log(float64(N))}
}

func (u uct) evaluate(q float64, n int) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = q/n + c*sqrt(2*ln(N)/n)
	return q/float64(n) + u.c*math.Sqrt(u.numerator/float64(n))
}
