package types

import "math"

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Percent returns part/whole*100 rounded to one decimal, or fallback when whole is zero.
func Percent(part, whole int, fallback float64) float64 {
	if whole == 0 {
		return fallback
	}
	return Round(float64(part)/float64(whole)*100, 1)
}
