package wps_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delta10/wpsd/internal/wps"
)

var (
	gml        = wps.Format{MimeType: "text/xml", Encoding: "UTF-8", Schema: "http://schemas.opengis.net/gml/3.1.1/base/feature.xsd"}
	jsonFormat = wps.Format{MimeType: "application/json", Encoding: "UTF-8"}
)

// bufferProcess declares one input and one output of every kind.
func bufferProcess(t *testing.T) wps.ProcessDescription {
	t.Helper()

	geometry, err := wps.NewComplexDescription(gml, []wps.Format{gml, jsonFormat}, 1)
	require.NoError(t, err)
	result, err := wps.NewComplexDescription(gml, []wps.Format{gml, jsonFormat}, 0)
	require.NoError(t, err)
	crs, err := wps.NewBoundingBoxDescription("EPSG:4326", []string{"EPSG:4326", "EPSG:28992"})
	require.NoError(t, err)
	uoms, err := wps.NewUOMs("m", []string{"m", "km"})
	require.NoError(t, err)
	area, err := wps.NewUOMs("m2", []string{"m2"})
	require.NoError(t, err)

	inputs := []wps.InputDescription{
		mustInput(t, "geometry", geometry, 1, 1),
		mustInput(t, "distance", wps.LiteralDescription{
			DataType: wps.DataType{Name: "xs:double", Reference: "http://www.w3.org/2001/XMLSchema#double"},
			UOMs:     &uoms,
			Domain:   wps.AllowedValues{Ranges: []wps.Range{{Minimum: "0", Maximum: "100"}}},
		}, 1, 1),
		mustInput(t, "extent", crs, 0, 2),
	}
	outputs := []wps.OutputDescription{
		mustOutput(t, "buffered", result),
		mustOutput(t, "area", wps.LiteralDescription{DataType: wps.DataType{Name: "xs:double"}, UOMs: &area}),
		mustOutput(t, "envelope", crs),
	}

	p, err := wps.NewProcessDescription(wps.ProcessBrief{
		Description:    wps.Description{Identifier: "geo:Buffer", Title: "Buffer"},
		ProcessVersion: "1.0",
	}, inputs, outputs)
	require.NoError(t, err)
	p.StatusSupported = true
	p.StoreSupported = true
	return p
}

// echoProcess has a single literal output and supports neither store nor status.
func echoProcess(t *testing.T) wps.ProcessDescription {
	t.Helper()
	p, err := wps.NewProcessDescription(wps.ProcessBrief{
		Description:    wps.Description{Identifier: "util:Echo", Title: "Echo"},
		ProcessVersion: "2",
	}, []wps.InputDescription{
		mustInput(t, "text", wps.LiteralDescription{DataType: wps.DataType{Name: "xs:string"}}, 0, 1),
	}, []wps.OutputDescription{
		mustOutput(t, "text", wps.LiteralDescription{DataType: wps.DataType{Name: "xs:string"}}),
	})
	require.NoError(t, err)
	return p
}

func mustInput(t *testing.T, id string, d wps.DataDescription, minOccurs, maxOccurs int) wps.InputDescription {
	t.Helper()
	in, err := wps.NewInputDescription(wps.Description{Identifier: id, Title: id}, d, minOccurs, maxOccurs)
	require.NoError(t, err)
	return in
}

func mustOutput(t *testing.T, id string, d wps.DataDescription) wps.OutputDescription {
	t.Helper()
	out, err := wps.NewOutputDescription(wps.Description{Identifier: id, Title: id}, d)
	require.NoError(t, err)
	return out
}

func literal(id, value string) wps.Input {
	return wps.Input{Identifier: id, Data: wps.LiteralData{Value: value}}
}

func geometry(payload string) wps.Input {
	return wps.Input{Identifier: "geometry", Data: wps.NewComplexData(gml, []byte(payload))}
}

func extent(t *testing.T, crs string) wps.Input {
	t.Helper()
	b, err := wps.NewBoundingBoxData(crs, []float64{4.8, 52.3}, []float64{5.0, 52.4})
	require.NoError(t, err)
	return wps.Input{Identifier: "extent", Data: b}
}
