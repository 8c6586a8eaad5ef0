package aocs

// Wrap normalizes an angle into the (-180, 180] degree range.
func Wrap(angle float64) float64 {
	for angle > 180 {
		angle -= 360
	}
	for angle <= -180 {
		angle += 360
	}
	return angle
}

// Integrate advances an angle estimate by one tick of filtered rate.
// dt must be the fixed tick period in seconds; scheduling jitter is
// absorbed by the loop's sleep-remainder timing, never by varying dt.
func Integrate(angle, filteredRate, dt float64) float64 {
	return Wrap(angle + filteredRate*dt)
}
