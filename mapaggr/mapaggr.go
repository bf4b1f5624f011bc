package mapaggr

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// ViewPort is the dashboard map window in degrees.
type ViewPort struct {
	LatMin float64 `json:"latmin" binding:"required"`
	LonMin float64 `json:"lonmin" binding:"required"`
	LatMax float64 `json:"latmax" binding:"required"`
	LonMax float64 `json:"lonmax" binding:"required"`
}

// Center returns the viewport's center point.
func (vp *ViewPort) Center() Point {
	return Point{
		Lat: (vp.LatMin + vp.LatMax) / 2,
		Lon: (vp.LonMin + vp.LonMax) / 2,
	}
}

// Point is a report location.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// MapResult is one aggregated pin: a location and how many reports it
// stands for.
type MapResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}

type aggrUnit struct {
	cnt      int64
	origCell s2.CellID
}

// Aggregator buckets report pins into s2 cells sized for the viewport so
// the dashboard map stays readable at any zoom level.
type Aggregator struct {
	level int
	aggrs map[s2.CellID]*aggrUnit
}

const (
	expectedCells = 160
	minLevel      = 6
	maxLevel      = 16
)

func cellBaseLevel(vp *ViewPort, center Point) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{
			Lo: minLL.Lat.Radians(),
			Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{
			Lo: minLL.Lng.Radians(),
			Hi: maxLL.Lng.Radians()},
	}

	vpArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(center.Lat, center.Lon))

	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel // Large enough level
}

// NewAggregator picks the cell level for the viewport and returns an empty
// aggregator.
func NewAggregator(vp *ViewPort) *Aggregator {
	return &Aggregator{
		level: cellBaseLevel(vp, vp.Center()),
		aggrs: make(map[s2.CellID]*aggrUnit),
	}
}

// AddPoint buckets one report location.
func (a *Aggregator) AddPoint(p Point) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
	parent := pc.Parent(a.level)
	if _, ok := a.aggrs[parent]; !ok {
		a.aggrs[parent] = &aggrUnit{}
	}
	a.aggrs[parent].cnt++
	a.aggrs[parent].origCell = pc
}

// ToArray renders the buckets. A cell holding a single report keeps the
// report's exact location instead of the cell center.
func (a *Aggregator) ToArray() []MapResult {
	r := make([]MapResult, 0, len(a.aggrs))
	for c, unit := range a.aggrs {
		ll := c.LatLng()
		if unit.cnt == 1 {
			ll = unit.origCell.LatLng()
		}
		r = append(r, MapResult{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     unit.cnt,
		})
	}
	return r
}
