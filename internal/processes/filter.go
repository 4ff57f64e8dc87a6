package processes

import (
	"context"
	"encoding/json"

	"github.com/itchyny/gojq"

	"github.com/delta10/wpsd/internal/wps"
)

const mimeJSON = "application/json"

// Filter runs a jq program over a JSON document.
type Filter struct {
	desc wps.ProcessDescription
}

func NewFilter() *Filter {
	jsonFormat := wps.Format{MimeType: mimeJSON, Encoding: "UTF-8"}
	document := must(wps.NewInputDescription(
		wps.Description{Identifier: "document", Title: "JSON document"},
		must(wps.NewComplexDescription(jsonFormat, []wps.Format{jsonFormat}, 10)),
		1, 1,
	))
	filter := must(wps.NewInputDescription(
		wps.Description{Identifier: "filter", Title: "jq filter", Abstract: "A jq program, for example .features | length"},
		wps.LiteralDescription{DataType: xsType("string"), DefaultValue: "."},
		0, 1,
	))
	result := must(wps.NewOutputDescription(
		wps.Description{Identifier: "result", Title: "Filtered document"},
		must(wps.NewComplexDescription(jsonFormat, []wps.Format{jsonFormat}, 0)),
	))

	desc := must(wps.NewProcessDescription(wps.ProcessBrief{
		Description: wps.Description{
			Identifier: "jq:Filter",
			Title:      "Filter a JSON document",
			Abstract:   "Runs a jq filter. A filter producing several values returns them as an array.",
		},
		ProcessVersion: "1.0.0",
	}, []wps.InputDescription{document, filter}, []wps.OutputDescription{result}))
	desc.StoreSupported = true
	desc.StatusSupported = true

	return &Filter{desc: desc}
}

func (f *Filter) Describe() wps.ProcessDescription { return f.desc }

func (f *Filter) Execute(ctx context.Context, inputs map[string][]wps.Data, r Reporter) (map[string]wps.Data, error) {
	program := "."
	if v, ok := single(inputs, "filter"); ok {
		program = v.(wps.LiteralData).Value
	}
	query, err := gojq.Parse(program)
	if err != nil {
		return nil, &wps.Error{Kind: wps.ErrValueNotAllowed, Locator: "filter", Msg: "could not parse filter: " + err.Error()}
	}

	v, _ := single(inputs, "document")
	var document any
	if err := json.Unmarshal(v.(wps.ComplexData).Payload(), &document); err != nil {
		return nil, &wps.Error{Kind: wps.ErrValueNotAllowed, Locator: "document", Msg: "could not parse json: " + err.Error()}
	}
	r.Progress(10, "filtering")

	var results []any
	iter := query.RunWithContext(ctx, document)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, ok := v.(error); ok {
			return nil, &wps.Error{Kind: wps.ErrValueNotAllowed, Locator: "filter", Msg: err.Error()}
		}

		results = append(results, v)
	}

	var out any = results
	if len(results) == 1 {
		out = results[0]
	}
	b, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return nil, err
	}

	return map[string]wps.Data{
		"result": wps.NewComplexData(wps.Format{MimeType: mimeJSON, Encoding: "UTF-8"}, b),
	}, nil
}
