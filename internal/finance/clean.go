package finance

// validCloses drops sessions without a usable close (null or non-positive),
// keeping the remaining closes in chronological order.
func validCloses(cl []*float64) []float64 {
	out := make([]float64, 0, len(cl))
	for _, v := range cl {
		if v == nil || *v <= 0 {
			continue
		}
		out = append(out, *v)
	}
	return out
}

// lastTwo returns the latest and the previous value of a series.
func lastTwo(cl []float64) (current, previous float64, ok bool) {
	if len(cl) < 2 {
		return 0, 0, false
	}
	return cl[len(cl)-1], cl[len(cl)-2], true
}
