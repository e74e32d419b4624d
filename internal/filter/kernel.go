package filter

import "math"

// Tap is one weighted sample along the blur axis.
// Offset is measured in texels from the center sample.
type Tap struct {
	Offset float32
	Weight float32
}

// gaussianSigma is the standard deviation of the weight curve over the
// normalized tap position range [-1, 1].
const gaussianSigma = 1.0 / 3.0

// GaussianWeight returns the Gaussian weight at normalized position x in
// [-1, 1]. The curve covers three standard deviations on each side.
func GaussianWeight(x float64) float64 {
	denominator := math.Sqrt(2*math.Pi) * gaussianSigma
	exponent := -(x * x) / (2 * gaussianSigma * gaussianSigma)
	return math.Exp(exponent) / denominator
}

// MinKernel is the smallest kernel NearestBestKernel returns. Smaller odd
// sizes either have no neighbours (1) or fold the center into its
// neighbours when merged (3).
const MinKernel = 5

// NearestBestKernel picks the kernel size closest to ideal that keeps the
// center tap on its own after linear-sampling merging: an odd size whose
// half is even. The result is never below MinKernel.
func NearestBestKernel(ideal float64) int {
	v := int(math.Round(ideal))
	for _, k := range []int{v, v - 1, v + 1, v - 2, v + 2} {
		if k > 0 && k%2 != 0 && (k/2)%2 == 0 {
			return max(k, MinKernel)
		}
	}
	return MinKernel
}

// BuildTaps generates n taps centered on offset 0 with normalized Gaussian
// weights. For n <= 1 it returns the identity tap.
func BuildTaps(n int) []Tap {
	if n <= 1 {
		return []Tap{{Offset: 0, Weight: 1}}
	}

	center := float64(n-1) / 2
	taps := make([]Tap, n)
	total := 0.0
	weights := make([]float64, n)

	for i := 0; i < n; i++ {
		u := float64(i) / float64(n-1)
		w := GaussianWeight(u*2 - 1)
		weights[i] = w
		total += w
	}

	for i := range taps {
		taps[i] = Tap{
			Offset: float32(float64(i) - center),
			Weight: float32(weights[i] / total),
		}
	}

	return taps
}

// LinearSamplingTaps merges neighbouring taps into single fetches placed
// between the two texels, relying on bilinear filtering to reproduce both
// weights. The table must be symmetric with an odd length; the center tap
// is kept at offset 0 whenever it does not share a cell with a neighbour.
func LinearSamplingTaps(taps []Tap) []Tap {
	n := len(taps)
	if n < 3 {
		return append([]Tap(nil), taps...)
	}

	center := (n - 1) / 2
	out := make([]Tap, 0, n)

	for i := 0; i <= center; i += 2 {
		j := min(i+1, center)
		if i == j {
			out = append(out, taps[i])
			continue
		}

		wi, wj := taps[i].Weight, taps[j].Weight
		shared := j == center
		weight := wi
		if shared {
			weight += wj * 0.5
		} else {
			weight += wj
		}

		offset := taps[i].Offset + 1/(1+wi/wj)
		if offset == 0 {
			out = append(out, taps[i], taps[i+1])
			continue
		}

		out = append(out, Tap{Offset: offset, Weight: weight}, Tap{Offset: -offset, Weight: weight})
	}

	return out
}

// SumWeights returns the total weight of a tap table.
func SumWeights(taps []Tap) float32 {
	var sum float32
	for _, t := range taps {
		sum += t.Weight
	}
	return sum
}

// Extent returns the largest absolute tap offset, in texels.
func Extent(taps []Tap) float32 {
	var e float32
	for _, t := range taps {
		if o := float32(math.Abs(float64(t.Offset))); o > e {
			e = o
		}
	}
	return e
}
