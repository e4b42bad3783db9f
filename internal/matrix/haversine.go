// Package matrix builds the distance and travel-time matrices consumed by the
// planner. Network-based matrices arrive precomputed from the caller; this
// package covers the haversine fallback and speed-derived time estimates.
package matrix

import "math"

const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// HaversineMatrix returns the pairwise straight-line distance matrix in meters
// for points given as (lat, lng) pairs.
func HaversineMatrix(points [][2]float64) [][]float64 {
	n := len(points)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			if i == j {
				continue
			}
			out[i][j] = Haversine(points[i][0], points[i][1], points[j][0], points[j][1])
		}
	}
	return out
}

// TimeFromDistance converts a distance matrix in meters into travel minutes at
// the given average speed.
func TimeFromDistance(distances [][]float64, speedKmh float64) [][]int {
	out := make([][]int, len(distances))
	if speedKmh <= 0 {
		for i := range out {
			out[i] = make([]int, len(distances[i]))
		}
		return out
	}
	speedMPerMin := speedKmh * 1000 / 60
	for i, row := range distances {
		out[i] = make([]int, len(row))
		for j, d := range row {
			out[i][j] = int(math.Round(d / speedMPerMin))
		}
	}
	return out
}

// Scale multiplies every travel time by the given factor, rounding down. Used
// for the predictive traffic uplift.
func Scale(times [][]int, factor float64) [][]int {
	out := make([][]int, len(times))
	for i, row := range times {
		out[i] = make([]int, len(row))
		for j, v := range row {
			out[i][j] = int(float64(v) * factor)
		}
	}
	return out
}
