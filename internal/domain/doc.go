// Package domain models Kyoshin realtime seismic intensity data.
//
// # Data Source
//
// The Kyoshin monitor publishes a rendered intensity map image every second.
// Each observation station of the K-NET (surface) and KiK-net (borehole)
// strong-motion networks is drawn as a single colored pixel at a fixed
// coordinate on that map; the pixel's color encodes the station's current
// measurement on a continuous ramp. This package holds the station registry,
// the codecs that read and write it, and the analysis pass that turns a map
// image back into per-station numeric readings.
//
// # Station Registry Conventions
//
// Delimited station files carry one record per line, comma separated:
//
//	network,code,suspended,name,region,latitude,longitude,pixelX,pixelY[,classificationId[,prefectureClassificationId]]
//
//	K-NET,AIC001,false,Nagoya,Aichi,35.1699,136.9076,245,261,23,2301
//
// Pixel columns are blank together when a station has no map placement.
// The two trailing classification IDs are optional administrative links and
// may be absent independently. Station codes are unique within a registry
// and define its sort order.
//
// The binary form frames the same records with fixed small-integer field
// tags (see wire.go), so optional fields can be added without breaking
// readers of older files.
//
// # Intensity Encoding
//
// Map colors follow the fixed Kyoshin ramp: 21 reference colors from deep
// blue at intensity -3.0 through green and yellow to dark red at +7.0, one
// stop every 0.5. Classification finds the nearest reference color and
// interpolates between adjacent stops; colors far from the ramp (sea, land,
// coastline anti-aliasing) are unclassifiable rather than an error.
//
// Continuous values map onto the JMA intensity scale:
//
//	<0.5 → 0 | <1.5 → 1 | <2.5 → 2 | <3.5 → 3 | <4.5 → 4
//	<5.0 → 5- | <5.5 → 5+ | <6.0 → 6- | <6.5 → 6+ | ≥6.5 → 7
//
// # Analysis Pass
//
// [Analyze] walks a station collection against a pixel grid: suspended or
// placement-less stations are skipped, out-of-grid coordinates fail only
// that station, and every station yields exactly one [AnalysisResult] in
// input order. See [Classify] for the color matching rules.
package domain
