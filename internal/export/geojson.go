// Package export renders a simulation tick as a GeoJSON FeatureCollection in
// screen coordinates (pixels, y grows downward), for any GeoJSON-capable
// viewer.
package export

import (
	"github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// Feature kinds, stored in the "kind" property.
const (
	KindIntersection = "intersection"
	KindLane         = "lane"
	KindLaneLine     = "lane_line"
	KindVehicle      = "vehicle"
)

// Snapshot builds the collection for one tick: the intersection box, one
// polygon and one centerline per lane, and the true rotated outline of every
// car.
func Snapshot(layout *road.Layout, cars []*vehicle.Car, tick int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.BoundingBox = []float64{0, 0, layout.Width, layout.Height}

	box := geojson.NewPolygonFeature(polygon(layout.Intersection.Corners()))
	box.SetProperty("kind", KindIntersection)
	box.SetProperty("tick", tick)
	fc.AddFeature(box)

	for _, d := range road.Directions {
		lane := layout.Lane(d)
		f := geojson.NewPolygonFeature(polygon(lane.Bounds.Corners()))
		f.SetProperty("kind", KindLane)
		f.SetProperty("direction", d.String())
		f.SetProperty("axis", lane.Axis.String())
		fc.AddFeature(f)

		line := geojson.NewLineStringFeature(centerline(layout, lane))
		line.SetProperty("kind", KindLaneLine)
		line.SetProperty("direction", d.String())
		fc.AddFeature(line)
	}

	for _, c := range cars {
		f := geojson.NewPolygonFeature(polygon(c.Rect().Corners()))
		f.ID = c.ID
		f.SetProperty("kind", KindVehicle)
		f.SetProperty("tick", tick)
		f.SetProperty("from", c.InitialDirection.String())
		f.SetProperty("to", c.Target.String())
		f.SetProperty("steer", c.Steer.String())
		f.SetProperty("velocity", c.Velocity)
		f.SetProperty("rotation", c.Rotation)
		f.SetProperty("can_move", c.CanMove())
		f.SetProperty("in_intersection", layout.InIntersection(c.Rect()))
		fc.AddFeature(f)
	}
	return fc
}

// Marshal encodes the snapshot.
func Marshal(layout *road.Layout, cars []*vehicle.Car, tick int) ([]byte, error) {
	data, err := Snapshot(layout, cars, tick).MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "encoding geojson snapshot")
	}
	return data, nil
}

// polygon converts a closed ring to GeoJSON polygon coordinates.
func polygon(ring orb.Ring) [][][]float64 {
	coords := make([][]float64, len(ring))
	for i, p := range ring {
		coords[i] = []float64{p[0], p[1]}
	}
	return [][][]float64{coords}
}

func centerline(layout *road.Layout, lane road.Lane) [][]float64 {
	if lane.Axis == road.Horizontal {
		return [][]float64{{0, lane.Line}, {layout.Width, lane.Line}}
	}
	return [][]float64{{lane.Line, 0}, {lane.Line, layout.Height}}
}
