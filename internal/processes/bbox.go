package processes

import (
	"context"
	"math"
	"strconv"

	"github.com/delta10/wpsd/internal/wps"
)

var supportedCRS = []string{"EPSG:4326", "EPSG:3857", "EPSG:28992"}

// BoundingBoxMeasure measures a bounding box in its own CRS units and
// returns it with ordered corners.
type BoundingBoxMeasure struct {
	desc wps.ProcessDescription
}

func NewBoundingBoxMeasure() *BoundingBoxMeasure {
	bbox := must(wps.NewBoundingBoxDescription(supportedCRS[0], supportedCRS))
	input := must(wps.NewInputDescription(
		wps.Description{Identifier: "bbox", Title: "Bounding box"},
		bbox, 1, 1,
	))
	area := must(wps.NewOutputDescription(
		wps.Description{Identifier: "area", Title: "Area", Abstract: "Product of the extents along every axis"},
		wps.LiteralDescription{DataType: xsType("double")},
	))
	envelope := must(wps.NewOutputDescription(
		wps.Description{Identifier: "envelope", Title: "Envelope"},
		bbox,
	))

	desc := must(wps.NewProcessDescription(wps.ProcessBrief{
		Description: wps.Description{
			Identifier: "geo:BoundingBoxArea",
			Title:      "Bounding box area",
		},
		ProcessVersion: "1.0.0",
	}, []wps.InputDescription{input}, []wps.OutputDescription{area, envelope}))

	return &BoundingBoxMeasure{desc: desc}
}

func (b *BoundingBoxMeasure) Describe() wps.ProcessDescription { return b.desc }

func (b *BoundingBoxMeasure) Execute(_ context.Context, inputs map[string][]wps.Data, _ Reporter) (map[string]wps.Data, error) {
	v, _ := single(inputs, "bbox")
	box := v.(wps.BoundingBoxData)

	lower := make([]float64, box.Dimensions)
	upper := make([]float64, box.Dimensions)
	area := 1.0
	for i := 0; i < box.Dimensions; i++ {
		lower[i] = math.Min(box.LowerCorner[i], box.UpperCorner[i])
		upper[i] = math.Max(box.LowerCorner[i], box.UpperCorner[i])
		area *= upper[i] - lower[i]
	}

	crs := box.CRS
	if crs == "" {
		crs = supportedCRS[0]
	}
	envelope, err := wps.NewBoundingBoxData(crs, lower, upper)
	if err != nil {
		return nil, err
	}

	return map[string]wps.Data{
		"area": wps.LiteralData{
			Value:    strconv.FormatFloat(area, 'g', -1, 64),
			DataType: "xs:double",
		},
		"envelope": envelope,
	}, nil
}
