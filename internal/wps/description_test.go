package wps_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delta10/wpsd/internal/wps"
)

func TestNewComplexDescription(t *testing.T) {
	t.Parallel()

	t.Run("default must be supported", func(t *testing.T) {
		_, err := wps.NewComplexDescription(gml, []wps.Format{jsonFormat}, 0)
		assert.ErrorIs(t, err, wps.ErrInvalidDescription)
	})

	t.Run("supported must not be empty", func(t *testing.T) {
		_, err := wps.NewComplexDescription(gml, nil, 0)
		assert.ErrorIs(t, err, wps.ErrInvalidDescription)
	})

	t.Run("negative maximum", func(t *testing.T) {
		_, err := wps.NewComplexDescription(gml, []wps.Format{gml}, -1)
		assert.ErrorIs(t, err, wps.ErrInvalidDescription)
	})

	t.Run("supports", func(t *testing.T) {
		d, err := wps.NewComplexDescription(gml, []wps.Format{gml, jsonFormat}, 0)
		require.NoError(t, err)

		assert.True(t, d.Supports(wps.Format{}), "empty format takes the default")
		assert.True(t, d.Supports(wps.Format{MimeType: "APPLICATION/JSON"}))
		assert.True(t, d.Supports(wps.Format{MimeType: "application/json", Encoding: "utf-8"}))
		assert.False(t, d.Supports(wps.Format{MimeType: "application/json", Encoding: "base64"}))
		assert.False(t, d.Supports(wps.Format{MimeType: "text/xml", Schema: "http://example.com/other.xsd"}))
		assert.False(t, d.Supports(wps.Format{MimeType: "image/png"}))
	})
}

func TestNewInputDescription(t *testing.T) {
	t.Parallel()

	str := wps.LiteralDescription{DataType: wps.DataType{Name: "xs:string"}}
	desc := wps.Description{Identifier: "in", Title: "In"}

	tests := []struct {
		name     string
		desc     wps.Description
		data     wps.DataDescription
		min, max int
	}{
		{"missing identifier", wps.Description{Title: "In"}, str, 1, 1},
		{"missing title", wps.Description{Identifier: "in"}, str, 1, 1},
		{"missing data", desc, nil, 1, 1},
		{"negative min", desc, str, -1, 1},
		{"zero max", desc, str, 0, 0},
		{"min above max", desc, str, 3, 2},
		{"default outside type", desc, wps.LiteralDescription{DataType: wps.DataType{Name: "xs:integer"}, DefaultValue: "ten"}, 0, 1},
		{"default outside range", desc, wps.LiteralDescription{
			DataType:     wps.DataType{Name: "xs:integer"},
			Domain:       wps.AllowedValues{Ranges: []wps.Range{{Minimum: "0", Maximum: "5"}}},
			DefaultValue: "6",
		}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wps.NewInputDescription(tt.desc, tt.data, tt.min, tt.max)
			assert.ErrorIs(t, err, wps.ErrInvalidDescription)
		})
	}

	t.Run("literal domain defaults to any value", func(t *testing.T) {
		in, err := wps.NewInputDescription(desc, str, 0, 1)
		require.NoError(t, err)
		lit, ok := in.Data().(wps.LiteralDescription)
		require.True(t, ok)
		assert.Equal(t, wps.AnyValue{}, lit.Domain)
		assert.Equal(t, 0, in.MinOccurs())
		assert.Equal(t, 1, in.MaxOccurs())
	})
}

func TestNewOutputDescription(t *testing.T) {
	t.Parallel()

	desc := wps.Description{Identifier: "out", Title: "Out"}

	capped, err := wps.NewComplexDescription(gml, []wps.Format{gml}, 5)
	require.NoError(t, err)
	_, err = wps.NewOutputDescription(desc, capped)
	assert.ErrorIs(t, err, wps.ErrInvalidDescription, "maximumMegabytes is input only")

	_, err = wps.NewOutputDescription(desc, wps.LiteralDescription{Domain: wps.AnyValue{}})
	assert.ErrorIs(t, err, wps.ErrInvalidDescription, "domain is input only")

	_, err = wps.NewOutputDescription(desc, wps.LiteralDescription{DefaultValue: "x"})
	assert.ErrorIs(t, err, wps.ErrInvalidDescription, "default value is input only")

	_, err = wps.NewOutputDescription(desc, nil)
	assert.ErrorIs(t, err, wps.ErrInvalidDescription)
}

func TestNewProcessDescription(t *testing.T) {
	t.Parallel()

	brief := wps.ProcessBrief{Description: wps.Description{Identifier: "p", Title: "P"}, ProcessVersion: "1"}
	str := wps.LiteralDescription{DataType: wps.DataType{Name: "xs:string"}}
	in := mustInput(t, "a", str, 1, 1)
	out := mustOutput(t, "b", str)

	_, err := wps.NewProcessDescription(brief, []wps.InputDescription{in}, nil)
	assert.ErrorIs(t, err, wps.ErrInvalidDescription, "no outputs")

	_, err = wps.NewProcessDescription(brief, []wps.InputDescription{in, in}, []wps.OutputDescription{out})
	assert.ErrorIs(t, err, wps.ErrInvalidDescription, "duplicate input")

	_, err = wps.NewProcessDescription(brief, nil, []wps.OutputDescription{out, out})
	assert.ErrorIs(t, err, wps.ErrInvalidDescription, "duplicate output")

	noVersion := brief
	noVersion.ProcessVersion = ""
	_, err = wps.NewProcessDescription(noVersion, nil, []wps.OutputDescription{out})
	assert.ErrorIs(t, err, wps.ErrInvalidDescription, "missing version")

	p, err := wps.NewProcessDescription(brief, nil, []wps.OutputDescription{out})
	require.NoError(t, err)
	assert.Empty(t, p.Inputs())
	got, ok := p.Output("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.Identifier)
	_, ok = p.Input("a")
	assert.False(t, ok)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	buffer := bufferProcess(t)
	echo := echoProcess(t)

	_, err := wps.NewCatalog(buffer, buffer)
	assert.ErrorIs(t, err, wps.ErrInvalidDescription)

	c, err := wps.NewCatalog(buffer, echo)
	require.NoError(t, err)

	briefs := c.Briefs()
	require.Len(t, briefs, 2)
	assert.Equal(t, "geo:Buffer", briefs[0].Identifier)
	assert.Equal(t, "util:Echo", briefs[1].Identifier)

	all, err := c.Describe([]string{"all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := c.Describe([]string{"util:Echo"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "2", one[0].ProcessVersion)

	_, err = c.Describe([]string{"util:Echo", "nope"})
	assert.ErrorIs(t, err, wps.ErrUnknownProcess)
	assert.Equal(t, "InvalidParameterValue", wps.ExceptionCode(err))

	_, err = c.Lookup("nope")
	var e *wps.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "nope", e.Locator)
}
