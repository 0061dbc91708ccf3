package common

func Lerp(a, b, t float32) float32 {
	return a + Clamp01(t)*(b-a)
}

// Clamp01 limits t to [0, 1].
func Clamp01(t float32) float32 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
