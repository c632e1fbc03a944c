package models

import "math"

// RPMToRadPerSec converts revolutions per minute to angular velocity.
func RPMToRadPerSec(rpm float64) float64 {
	return rpm * (2 * math.Pi / 60)
}

// RadPerSecToRPM converts angular velocity to revolutions per minute.
func RadPerSecToRPM(omega float64) float64 {
	return omega * (60 / (2 * math.Pi))
}
