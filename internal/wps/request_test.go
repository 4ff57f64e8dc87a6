package wps_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delta10/wpsd/internal/ows"
	"github.com/delta10/wpsd/internal/wps"
)

func TestExecuteValidate(t *testing.T) {
	t.Parallel()

	p := bufferProcess(t)
	valid := func() wps.Execute {
		return wps.Execute{
			Identifier: "geo:Buffer",
			Inputs: []wps.Input{
				geometry("<gml:Point/>"),
				literal("distance", "12.5"),
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*wps.Execute)
		kind   error
		code   string
	}{
		{
			name:   "valid",
			mutate: func(*wps.Execute) {},
		},
		{
			name: "valid with optional occurrences",
			mutate: func(e *wps.Execute) {
				e.Inputs = append(e.Inputs, extent(t, "EPSG:4326"), extent(t, "EPSG:28992"))
			},
		},
		{
			name:   "wrong version",
			mutate: func(e *wps.Execute) { e.Version = "2.0.0" },
			kind:   wps.ErrVersionNegotiation,
			code:   ows.CodeVersionNegotiationFailed,
		},
		{
			name:   "wrong service",
			mutate: func(e *wps.Execute) { e.Service = "WMS" },
			kind:   wps.ErrInvalidRequest,
			code:   ows.CodeInvalidParameterValue,
		},
		{
			name:   "other process",
			mutate: func(e *wps.Execute) { e.Identifier = "util:Echo" },
			kind:   wps.ErrUnknownProcess,
			code:   ows.CodeInvalidParameterValue,
		},
		{
			name:   "missing mandatory input",
			mutate: func(e *wps.Execute) { e.Inputs = e.Inputs[1:] },
			kind:   wps.ErrCardinalityViolation,
			code:   ows.CodeMissingParameterValue,
		},
		{
			name: "too many occurrences",
			mutate: func(e *wps.Execute) {
				e.Inputs = append(e.Inputs, extent(t, "EPSG:4326"), extent(t, "EPSG:4326"), extent(t, "EPSG:4326"))
			},
			kind: wps.ErrCardinalityViolation,
			code: ows.CodeInvalidParameterValue,
		},
		{
			name:   "undeclared input",
			mutate: func(e *wps.Execute) { e.Inputs = append(e.Inputs, literal("width", "3")) },
			kind:   wps.ErrUnknownInput,
			code:   ows.CodeInvalidParameterValue,
		},
		{
			name:   "literal for complex input",
			mutate: func(e *wps.Execute) { e.Inputs[0] = literal("geometry", "POINT(1 2)") },
			kind:   wps.ErrVariantMismatch,
			code:   ows.CodeInvalidParameterValue,
		},
		{
			name: "unsupported format",
			mutate: func(e *wps.Execute) {
				e.Inputs[0] = wps.Input{Identifier: "geometry", Data: wps.NewComplexData(wps.Format{MimeType: "image/png"}, []byte{1})}
			},
			kind: wps.ErrSchemaMismatch,
			code: ows.CodeInvalidParameterValue,
		},
		{
			name:   "payload above maximum",
			mutate: func(e *wps.Execute) { e.Inputs[0] = geometry(string(bytes.Repeat([]byte("x"), 1<<20+1))) },
			kind:   wps.ErrFileSizeExceeded,
			code:   ows.CodeFileSizeExceeded,
		},
		{
			name:   "literal outside range",
			mutate: func(e *wps.Execute) { e.Inputs[1] = literal("distance", "100.5") },
			kind:   wps.ErrValueNotAllowed,
			code:   ows.CodeInvalidParameterValue,
		},
		{
			name:   "literal of wrong type",
			mutate: func(e *wps.Execute) { e.Inputs[1] = literal("distance", "far") },
			kind:   wps.ErrValueNotAllowed,
			code:   ows.CodeInvalidParameterValue,
		},
		{
			name: "unsupported uom",
			mutate: func(e *wps.Execute) {
				e.Inputs[1] = wps.Input{Identifier: "distance", Data: wps.LiteralData{Value: "1", UOM: "mi"}}
			},
			kind: wps.ErrSchemaMismatch,
			code: ows.CodeInvalidParameterValue,
		},
		{
			name:   "unsupported crs",
			mutate: func(e *wps.Execute) { e.Inputs = append(e.Inputs, extent(t, "EPSG:3857")) },
			kind:   wps.ErrSchemaMismatch,
			code:   ows.CodeInvalidParameterValue,
		},
		{
			name: "invalid response form",
			mutate: func(e *wps.Execute) {
				e.ResponseForm = wps.ResponseDocument{Status: true}
			},
			kind: wps.ErrInvalidStatusRequest,
			code: ows.CodeInvalidParameterValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := req.Validate(p)
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.code, wps.ExceptionCode(err))
		})
	}
}

func TestExecuteSingleOccurrence(t *testing.T) {
	t.Parallel()

	p, err := wps.NewProcessDescription(wps.ProcessBrief{
		Description:    wps.Description{Identifier: "util:Square", Title: "Square"},
		ProcessVersion: "1",
	}, []wps.InputDescription{
		mustInput(t, "value", wps.LiteralDescription{DataType: wps.DataType{Name: "xs:integer"}}, 1, 1),
	}, []wps.OutputDescription{
		mustOutput(t, "square", wps.LiteralDescription{DataType: wps.DataType{Name: "xs:integer"}}),
	})
	require.NoError(t, err)

	omitted := wps.Execute{Identifier: "util:Square"}
	assert.ErrorIs(t, omitted.Validate(p), wps.ErrCardinalityViolation)

	twice := wps.Execute{Identifier: "util:Square", Inputs: []wps.Input{literal("value", "49"), literal("value", "49")}}
	assert.ErrorIs(t, twice.Validate(p), wps.ErrCardinalityViolation)

	once := wps.Execute{Identifier: "util:Square", Inputs: []wps.Input{literal("value", "49")}}
	require.NoError(t, once.Validate(p))

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	resp := wps.NewExecuteResponse(once, p, "http://example.com/wps", at)
	assert.IsType(t, wps.Accepted{}, resp.Status.State)
	assert.Equal(t, at, resp.Status.CreationTime)
}

func TestExecuteOccurrences(t *testing.T) {
	t.Parallel()

	req := wps.Execute{Inputs: []wps.Input{
		literal("a", "1"),
		literal("b", "2"),
		literal("a", "3"),
	}}
	occ := req.Occurrences()
	require.Len(t, occ, 2)
	assert.Equal(t, []wps.Data{wps.LiteralData{Value: "1"}, wps.LiteralData{Value: "3"}}, occ["a"])
	assert.Equal(t, []wps.Data{wps.LiteralData{Value: "2"}}, occ["b"])
}

func TestLiteralDataTypes(t *testing.T) {
	t.Parallel()

	double := wps.LiteralDescription{DataType: wps.DataType{Name: "xs:double", Reference: "http://www.w3.org/2001/XMLSchema#double"}}

	assert.NoError(t, wps.ValidateValue("x", wps.LiteralData{Value: "1e3", DataType: "http://www.w3.org/2001/XMLSchema#double"}, double))
	assert.NoError(t, wps.ValidateValue("x", wps.LiteralData{Value: "1", DataType: "double"}, double))
	assert.ErrorIs(t, wps.ValidateValue("x", wps.LiteralData{Value: "1", DataType: "xs:integer"}, double), wps.ErrSchemaMismatch)

	positive := wps.LiteralDescription{DataType: wps.DataType{Name: "xs:positiveInteger"}}
	assert.ErrorIs(t, wps.ValidateValue("x", wps.LiteralData{Value: "0"}, positive), wps.ErrValueNotAllowed)
	assert.NoError(t, wps.ValidateValue("x", wps.LiteralData{Value: "7"}, positive))

	boolean := wps.LiteralDescription{DataType: wps.DataType{Name: "xs:boolean"}}
	assert.NoError(t, wps.ValidateValue("x", wps.LiteralData{Value: "true"}, boolean))
	assert.ErrorIs(t, wps.ValidateValue("x", wps.LiteralData{Value: "yes"}, boolean), wps.ErrValueNotAllowed)

	enum := wps.LiteralDescription{
		DataType: wps.DataType{Name: "xs:string"},
		Domain:   wps.AllowedValues{Values: []string{"round", "flat"}},
	}
	assert.NoError(t, wps.ValidateValue("x", wps.LiteralData{Value: "flat"}, enum))
	assert.ErrorIs(t, wps.ValidateValue("x", wps.LiteralData{Value: "square"}, enum), wps.ErrValueNotAllowed)

	open := wps.LiteralDescription{
		DataType: wps.DataType{Name: "xs:double"},
		Domain:   wps.AllowedValues{Ranges: []wps.Range{{Minimum: "0", Maximum: "1", Closure: wps.ClosureOpen}}},
	}
	assert.NoError(t, wps.ValidateValue("x", wps.LiteralData{Value: "0.5"}, open))
	assert.ErrorIs(t, wps.ValidateValue("x", wps.LiteralData{Value: "0"}, open), wps.ErrValueNotAllowed)
	assert.ErrorIs(t, wps.ValidateValue("x", wps.LiteralData{Value: "1"}, open), wps.ErrValueNotAllowed)

	assert.ErrorIs(t, wps.ValidateValue("x", nil, open), wps.ErrVariantMismatch)
}

func TestDescribeProcessValidate(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, wps.DescribeProcess{}.Validate(), wps.ErrInvalidRequest)
	assert.ErrorIs(t, wps.DescribeProcess{Identifiers: []string{"a", ""}}.Validate(), wps.ErrInvalidRequest)
	assert.NoError(t, wps.DescribeProcess{Identifiers: []string{"ALL"}}.Validate())
}

func TestGetCapabilitiesValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, wps.GetCapabilities{}.Validate())
	assert.NoError(t, wps.GetCapabilities{Service: "WPS", AcceptVersions: []string{"0.4.0", "1.0.0"}}.Validate())

	err := wps.GetCapabilities{AcceptVersions: []string{"2.0.0"}}.Validate()
	assert.ErrorIs(t, err, wps.ErrVersionNegotiation)
	assert.Equal(t, ows.CodeVersionNegotiationFailed, wps.ExceptionCode(err))
}

func TestReferenceValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  wps.Reference
		ok   bool
	}{
		{"get", wps.Reference{Href: "http://example.com/a.xml"}, true},
		{"post with body", wps.Reference{Href: "http://example.com/a", Method: wps.MethodPost, Body: []byte("<q/>")}, true},
		{"post with body reference", wps.Reference{Href: "http://example.com/a", Method: wps.MethodPost, BodyReference: "http://example.com/q.xml"}, true},
		{"empty href", wps.Reference{}, false},
		{"relative href", wps.Reference{Href: "/a.xml"}, false},
		{"get with body", wps.Reference{Href: "http://example.com/a", Body: []byte("x")}, false},
		{"post with both bodies", wps.Reference{Href: "http://example.com/a", Method: wps.MethodPost, Body: []byte("x"), BodyReference: "http://example.com/q"}, false},
		{"relative body reference", wps.Reference{Href: "http://example.com/a", Method: wps.MethodPost, BodyReference: "q.xml"}, false},
		{"unsupported method", wps.Reference{Href: "http://example.com/a", Method: "PUT"}, false},
		{"header without key", wps.Reference{Href: "http://example.com/a", Headers: []wps.Header{{Value: "x"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wps.NewComplexReference(tt.ref)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, wps.ErrInvalidReference)
		})
	}
}

func TestComplexData(t *testing.T) {
	t.Parallel()

	empty := wps.NewComplexData(gml, []byte{})
	assert.Nil(t, empty.Payload())

	ref, err := wps.NewComplexReference(wps.Reference{Href: "http://example.com/a.json", Format: jsonFormat})
	require.NoError(t, err)
	assert.Equal(t, jsonFormat, ref.Format())
	r, ok := ref.Reference()
	require.True(t, ok)
	assert.Equal(t, wps.MethodGet, r.EffectiveMethod())

	resolved := ref.WithPayload([]byte(`{}`))
	_, ok = resolved.Reference()
	assert.False(t, ok)
	assert.Equal(t, []byte(`{}`), resolved.Payload())
	assert.Equal(t, jsonFormat, resolved.Format())

	_, err = wps.NewBoundingBoxData("EPSG:4326", []float64{1, 2}, []float64{3})
	assert.ErrorIs(t, err, wps.ErrValueNotAllowed)
}
