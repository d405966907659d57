package proj4_coordinate_converter

import "fmt"

const jgd2011FirstZoneSrid = 6669

// origin latitude and central meridian, in degrees, of the 19 Japan plane rectangular zones
var jgd2011ZoneOrigins = [][2]float64{
	{33, 129.5},
	{33, 131},
	{36, 132 + 1.0/6},
	{33, 133.5},
	{36, 134 + 1.0/3},
	{36, 136},
	{36, 137 + 1.0/6},
	{36, 138.5},
	{36, 139 + 5.0/6},
	{40, 140 + 5.0/6},
	{44, 140.25},
	{44, 142.25},
	{44, 144.25},
	{26, 142},
	{26, 127.5},
	{26, 124},
	{26, 131},
	{20, 136},
	{26, 154},
}

// EpsgDefinition returns the proj4 init string for the reference systems the area of interest can be given in
func EpsgDefinition(code int) (string, bool) {
	switch code {
	case 4326:
		return "+proj=longlat +datum=WGS84 +no_defs", true
	case 4978:
		return "+proj=geocent +datum=WGS84 +units=m +no_defs", true
	case 6668:
		return "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs", true
	}

	zone := code - jgd2011FirstZoneSrid
	if zone < 0 || zone >= len(jgd2011ZoneOrigins) {
		return "", false
	}

	origin := jgd2011ZoneOrigins[zone]
	return fmt.Sprintf(
		"+proj=tmerc +lat_0=%.10f +lon_0=%.10f +k=0.9999 +x_0=0 +y_0=0 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
		origin[0], origin[1],
	), true
}
