// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package projection

import "math"

// ellipsoid is defined by its semi-major axis (m) and inverse flattening.
type ellipsoid struct {
	a    float64
	invF float64
}

// grs80 is the reference ellipsoid of JGD2011.
var grs80 = ellipsoid{a: 6378137.0, invF: 298.257222101}

// transverseMercator holds the precomputed series coefficients of a
// Gauss-Krüger projection expanded in the third flattening n (Krüger
// series to n^5, latitude recovery to n^6). Indices 1..N are used so the
// coefficient tables read like the published formulas.
type transverseMercator struct {
	lon0   float64 // central meridian, radians
	fe, fn float64 // false easting / northing, metres

	e     float64 // first eccentricity
	aBar  float64 // scaled rectifying radius
	sPhi0 float64 // scaled meridian arc from the equator to the origin latitude

	alpha [6]float64
	beta  [6]float64
	delta [7]float64
}

func newTransverseMercator(p Params, el ellipsoid) *transverseMercator {
	f := 1 / el.invF
	n := f / (2 - f)
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n
	n6 := n5 * n

	a0 := 1 + n2/4 + n4/64
	aj := [6]float64{
		0,
		-3.0 / 2.0 * (n - n3/8 - n5/64),
		15.0 / 16.0 * (n2 - n4/4),
		-35.0 / 48.0 * (n3 - 5.0/16.0*n5),
		315.0 / 512.0 * n4,
		-693.0 / 1280.0 * n5,
	}

	tm := &transverseMercator{
		lon0: radians(p.CentralMeridian),
		fe:   p.FalseEasting,
		fn:   p.FalseNorthing,
		e:    2 * math.Sqrt(n) / (1 + n),
	}

	tm.alpha = [6]float64{
		0,
		n/2 - 2.0/3.0*n2 + 5.0/16.0*n3 + 41.0/180.0*n4 - 127.0/288.0*n5,
		13.0/48.0*n2 - 3.0/5.0*n3 + 557.0/1440.0*n4 + 281.0/630.0*n5,
		61.0/240.0*n3 - 103.0/140.0*n4 + 15061.0/26880.0*n5,
		49561.0/161280.0*n4 - 179.0/168.0*n5,
		34729.0 / 80640.0 * n5,
	}
	tm.beta = [6]float64{
		0,
		n/2 - 2.0/3.0*n2 + 37.0/96.0*n3 - 1.0/360.0*n4 - 81.0/512.0*n5,
		1.0/48.0*n2 + 1.0/15.0*n3 - 437.0/1440.0*n4 + 46.0/105.0*n5,
		17.0/480.0*n3 - 37.0/840.0*n4 - 209.0/4480.0*n5,
		4397.0/161280.0*n4 - 11.0/504.0*n5,
		4583.0 / 161280.0 * n5,
	}
	tm.delta = [7]float64{
		0,
		2*n - 2.0/3.0*n2 - 2*n3 + 116.0/45.0*n4 + 26.0/45.0*n5 - 2854.0/675.0*n6,
		7.0/3.0*n2 - 8.0/5.0*n3 - 227.0/45.0*n4 + 2704.0/315.0*n5 + 2323.0/945.0*n6,
		56.0/15.0*n3 - 136.0/35.0*n4 - 1262.0/105.0*n5 + 73814.0/2835.0*n6,
		4279.0/630.0*n4 - 332.0/35.0*n5 - 399572.0/14175.0*n6,
		4174.0/315.0*n5 - 144838.0/6237.0*n6,
		601676.0 / 22275.0 * n6,
	}

	m := p.ScaleFactor * el.a / (1 + n)
	phi0 := radians(p.LatOrigin)
	arc := a0 * phi0
	for j := 1; j <= 5; j++ {
		arc += aj[j] * math.Sin(2*float64(j)*phi0)
	}
	tm.aBar = m * a0
	tm.sPhi0 = m * arc

	return tm
}

// forward projects geographic degrees to (northing, easting) metres.
func (tm *transverseMercator) forward(latDeg, lonDeg float64) (northing, easting float64) {
	phi := radians(latDeg)
	dl := radians(lonDeg) - tm.lon0

	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - tm.e*math.Atanh(tm.e*sinPhi))
	tBar := math.Sqrt(1 + t*t)

	xi := math.Atan2(t, math.Cos(dl))
	eta := math.Atanh(math.Sin(dl) / tBar)

	x, y := xi, eta
	for j := 1; j <= 5; j++ {
		k := 2 * float64(j)
		x += tm.alpha[j] * math.Sin(k*xi) * math.Cosh(k*eta)
		y += tm.alpha[j] * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	northing = tm.aBar*x - tm.sPhi0 + tm.fn
	easting = tm.aBar*y + tm.fe
	return northing, easting
}

// inverse recovers geographic degrees from (northing, easting) metres.
func (tm *transverseMercator) inverse(northing, easting float64) (latDeg, lonDeg float64) {
	xi := (northing - tm.fn + tm.sPhi0) / tm.aBar
	eta := (easting - tm.fe) / tm.aBar

	xiP, etaP := xi, eta
	for j := 1; j <= 5; j++ {
		k := 2 * float64(j)
		xiP -= tm.beta[j] * math.Sin(k*xi) * math.Cosh(k*eta)
		etaP -= tm.beta[j] * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	chi := math.Asin(math.Sin(xiP) / math.Cosh(etaP))
	phi := chi
	for j := 1; j <= 6; j++ {
		phi += tm.delta[j] * math.Sin(2*float64(j)*chi)
	}
	lon := tm.lon0 + math.Atan2(math.Sinh(etaP), math.Cos(xiP))

	return degrees(phi), degrees(lon)
}

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }

func degrees(rad float64) float64 { return rad * 180.0 / math.Pi }
