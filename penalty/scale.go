package penalty

import "math"

/*
PerpScale is the scale of point contact over the cosine s = |t1.t2|/(|t1||t2|) of the contact angle. It
vanishes above cos(shift1), is one below cos(shift2) and follows a half cosine in between. dfac is d fac/ds.
Both shift angles beyond pi/2 switch point contact off.
*/
func PerpScale(s, shift1, shift2 float64) (fac, dfac float64) {
	if shift1 > math.Pi/2 && shift2 > math.Pi/2 {
		return 0, 0
	}
	s1, s2 := math.Cos(shift1), math.Cos(shift2)
	switch {
	case s > s1:
		return 0, 0
	case s > s2:
		arg := math.Pi * (s - s2) / (s1 - s2)
		fac = 0.5 * (math.Cos(arg) + 1)
		dfac = -0.5 * math.Pi / (s1 - s2) * math.Sin(arg)
		return
	}
	return 1, 0
}

// ParScale is the scale of line contact, one above cos(shift1) and zero below cos(shift2).
// Both shift angles beyond pi/2 leave it at one.
func ParScale(s, shift1, shift2 float64) (fac, dfac float64) {
	if shift1 > math.Pi/2 && shift2 > math.Pi/2 {
		return 1, 0
	}
	s1, s2 := math.Cos(shift1), math.Cos(shift2)
	switch {
	case s > s1:
		return 1, 0
	case s > s2:
		arg := math.Pi * (s - s2) / (s1 - s2)
		fac = 0.5 * (1 - math.Cos(arg))
		dfac = 0.5 * math.Pi / (s1 - s2) * math.Sin(arg)
		return
	}
	return 0, 0
}

// PerpScaleCurvature is d2 fac/ds2 of PerpScale
func PerpScaleCurvature(s, shift1, shift2 float64) float64 {
	if shift1 > math.Pi/2 && shift2 > math.Pi/2 {
		return 0
	}
	s1, s2 := math.Cos(shift1), math.Cos(shift2)
	if s > s1 || s <= s2 {
		return 0
	}
	k := math.Pi / (s1 - s2)
	return -0.5 * k * k * math.Cos(k*(s-s2))
}

// ParScaleCurvature is d2 fac/ds2 of ParScale
func ParScaleCurvature(s, shift1, shift2 float64) float64 {
	if shift1 > math.Pi/2 && shift2 > math.Pi/2 {
		return 0
	}
	s1, s2 := math.Cos(shift1), math.Cos(shift2)
	if s > s1 || s <= s2 {
		return 0
	}
	k := math.Pi / (s1 - s2)
	return 0.5 * k * k * math.Cos(k*(s-s2))
}
