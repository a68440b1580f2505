package detect

import "sort"

// iou calculates the Intersection over Union between two bounding boxes
func iou(a, b BoxRect) float32 {

	left := maxInt(a.Left, b.Left)
	top := maxInt(a.Top, b.Top)
	right := minInt(a.Right, b.Right)
	bottom := minInt(a.Bottom, b.Bottom)

	iw := right - left
	ih := bottom - top

	if iw <= 0 || ih <= 0 {
		return 0
	}

	inter := float32(iw * ih)
	union := float32(a.Width()*a.Height()+b.Width()*b.Height()) - inter

	if union <= 0 {
		return 0
	}

	return inter / union
}

// nms suppresses overlapping results that exceed the IoU threshold, keeping
// the highest scored result of each overlapping cluster.  When agnostic is
// false suppression only applies between results of the same class.
func nms(results []Result, threshold float32, agnostic bool) []Result {

	if len(results) == 0 {
		return results
	}

	// order results by descending probability
	ordered := make([]Result, len(results))
	copy(ordered, results)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Probability > ordered[j].Probability
	})

	suppressed := make([]bool, len(ordered))
	var out []Result

	for i := 0; i < len(ordered); i++ {

		if suppressed[i] {
			continue
		}

		out = append(out, ordered[i])

		for j := i + 1; j < len(ordered); j++ {

			if suppressed[j] {
				continue
			}

			if !agnostic && ordered[i].Class != ordered[j].Class {
				continue
			}

			if iou(ordered[i].Box, ordered[j].Box) > threshold {
				suppressed[j] = true
			}
		}
	}

	return out
}

// AgnosticNMS performs class agnostic Non-Maximum Suppression on the results,
// suppressing overlapping boxes regardless of their class
func AgnosticNMS(results []Result, threshold float32) []Result {
	return nms(results, threshold, true)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
