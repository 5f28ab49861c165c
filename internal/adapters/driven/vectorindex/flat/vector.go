package flat

import "math"

// normalizeL2 returns a copy of v scaled to unit length.
// A zero vector is returned unchanged.
func normalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	copy(out, v)
	n := math.Sqrt(sum)
	if n == 0 {
		return out
	}
	inv := 1.0 / n
	for i := range out {
		out[i] = float32(float64(out[i]) * inv)
	}
	return out
}

// dot computes the inner product of two equal-length vectors.
// For unit vectors this is the cosine similarity.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// finite reports whether every component is a real number.
func finite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
