// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package projection

import "fmt"

// ZoneCount is the number of JGD2011 plane rectangular coordinate systems.
const ZoneCount = 19

// scaleFactor is the published central-meridian scale of every system.
const scaleFactor = 0.9999

// Params are the projection parameters of a zone: a Transverse
// Mercator on GRS80 with zero false easting/northing.
type Params struct {
	LatOrigin       float64 `json:"lat_origin"`       // degrees
	CentralMeridian float64 `json:"central_meridian"` // degrees
	ScaleFactor     float64 `json:"scale_factor"`
	FalseEasting    float64 `json:"false_easting"`
	FalseNorthing   float64 `json:"false_northing"`
}

// Proj4 renders the parameters as a PROJ definition string, handy when
// the same system has to be configured in GIS tooling.
func (p Params) Proj4() string {
	return fmt.Sprintf("+proj=tmerc +lat_0=%g +lon_0=%.10g +k=%g +x_0=%g +y_0=%g +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
		p.LatOrigin, p.CentralMeridian, p.ScaleFactor, p.FalseEasting, p.FalseNorthing)
}

// Zone is one plane rectangular coordinate system.
type Zone struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`   // display name, e.g. "JGD2011 / 平面直角座標系 第IX系"
	Region string `json:"region"` // prefectures covered
	EPSG   int    `json:"epsg"`
	Params Params `json:"params"`

	tm *transverseMercator
}

// DisplayName is what operators pick from: system name plus region.
func (z Zone) DisplayName() string {
	return fmt.Sprintf("%s (%s)", z.Name, z.Region)
}

type zoneDef struct {
	roman  string
	region string
	latDeg float64
	lonDeg float64
	lonMin float64
}

// Origins as published for JGD2011 (degrees and arc-minutes are kept
// separate so the table matches the official notation exactly).
var zoneDefs = [ZoneCount]zoneDef{
	{"I", "長崎県、鹿児島県の一部", 33, 129, 30},
	{"II", "福岡県、佐賀県、熊本県、大分県、宮崎県、鹿児島県の一部", 33, 131, 0},
	{"III", "山口県、島根県、広島県", 36, 132, 10},
	{"IV", "香川県、愛媛県、徳島県、高知県", 33, 133, 30},
	{"V", "兵庫県、鳥取県、岡山県", 36, 134, 20},
	{"VI", "京都府、大阪府、福井県、滋賀県、三重県、奈良県、和歌山県", 36, 136, 0},
	{"VII", "石川県、富山県、岐阜県、愛知県", 36, 137, 10},
	{"VIII", "新潟県、長野県、山梨県、静岡県", 36, 138, 30},
	{"IX", "東京都、福島県、栃木県、茨城県、埼玉県、千葉県、群馬県、神奈川県", 36, 139, 50},
	{"X", "青森県、秋田県、山形県、岩手県、宮城県", 40, 140, 50},
	{"XI", "北海道西部", 44, 140, 15},
	{"XII", "北海道中央部", 44, 142, 15},
	{"XIII", "北海道東部", 44, 144, 15},
	{"XIV", "東京都 小笠原諸島", 26, 142, 0},
	{"XV", "沖縄県 沖縄本島周辺", 26, 127, 30},
	{"XVI", "沖縄県 先島諸島", 26, 124, 0},
	{"XVII", "沖縄県 大東諸島", 26, 131, 0},
	{"XVIII", "東京都 沖ノ鳥島", 20, 136, 0},
	{"XIX", "東京都 南鳥島", 26, 154, 0},
}

// epsgBase is the EPSG code of system I; the others follow densely.
const epsgBase = 6669

func buildZones() [ZoneCount]Zone {
	var zones [ZoneCount]Zone
	for i, d := range zoneDefs {
		p := Params{
			LatOrigin:       d.latDeg,
			CentralMeridian: d.lonDeg + d.lonMin/60.0,
			ScaleFactor:     scaleFactor,
		}
		zones[i] = Zone{
			ID:     i + 1,
			Name:   "JGD2011 / 平面直角座標系 第" + d.roman + "系",
			Region: d.region,
			EPSG:   epsgBase + i,
			Params: p,
			tm:     newTransverseMercator(p, grs80),
		}
	}
	return zones
}
