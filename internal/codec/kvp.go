package codec

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/delta10/wpsd/internal/utils"
	"github.com/delta10/wpsd/internal/wps"
)

// Describer looks up the description of an offered process. Execute KVP
// needs it to tell which data arm each DataInputs value takes.
type Describer interface {
	Lookup(identifier string) (wps.ProcessDescription, error)
}

func kvpError(kind error, locator, msg string) error {
	return &wps.Error{Kind: kind, Locator: locator, Msg: msg}
}

// listParams hold ';' separated items with '@' attributes. Their values stay
// percent-encoded until each token has been split off, so escaped separators
// remain part of a value.
var listParams = map[string]bool{"datainputs": true, "responsedocument": true, "rawdataoutput": true}

// ParseQuery decodes a raw query string for ParseKVP. Values of DataInputs,
// ResponseDocument and RawDataOutput are kept percent-encoded.
func ParseQuery(raw string) (url.Values, error) {
	q := url.Values{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, &ParseError{Element: "query", Err: err}
		}
		if !listParams[strings.ToLower(key)] {
			if v, err = url.QueryUnescape(v); err != nil {
				return nil, &ParseError{Element: key, Err: err}
			}
		}
		q.Add(key, v)
	}
	return q, nil
}

// ParseKVP decodes an HTTP GET request. Parameter names are matched
// case-insensitively and may occur only once. List parameters are expected
// in the encoded form ParseQuery leaves them in.
func ParseKVP(query url.Values, processes Describer) (wps.Request, error) {
	if key, ok := utils.QueryParamsContainMultipleKeys(query); ok {
		return nil, kvpError(wps.ErrInvalidRequest, key, "parameter given more than once")
	}
	q := utils.QueryParamsToLower(query)

	service := q.Get("service")
	if service == "" {
		return nil, kvpError(wps.ErrMissingParameter, "service", "")
	}
	request := q.Get("request")
	if request == "" {
		return nil, kvpError(wps.ErrMissingParameter, "request", "")
	}

	switch {
	case strings.EqualFold(request, wps.OpGetCapabilities):
		return wps.GetCapabilities{
			Service:        service,
			Language:       q.Get("language"),
			AcceptVersions: utils.SplitList(q.Get("acceptversions")),
		}, nil
	case strings.EqualFold(request, wps.OpDescribeProcess):
		base, err := kvpBase(q, service)
		if err != nil {
			return nil, err
		}
		ids := utils.SplitList(q.Get("identifier"))
		if len(ids) == 0 {
			return nil, kvpError(wps.ErrMissingParameter, "identifier", "")
		}
		return wps.DescribeProcess{RequestBase: base, Identifiers: ids}, nil
	case strings.EqualFold(request, wps.OpExecute):
		base, err := kvpBase(q, service)
		if err != nil {
			return nil, err
		}
		return parseExecuteKVP(q, base, processes)
	default:
		return nil, kvpError(wps.ErrOperationNotSupported, request, "")
	}
}

func kvpBase(q url.Values, service string) (wps.RequestBase, error) {
	version := q.Get("version")
	if version == "" {
		return wps.RequestBase{}, kvpError(wps.ErrMissingParameter, "version", "")
	}
	return wps.RequestBase{Service: service, Version: version, Language: q.Get("language")}, nil
}

func parseExecuteKVP(q url.Values, base wps.RequestBase, processes Describer) (wps.Execute, error) {
	id := q.Get("identifier")
	if id == "" {
		return wps.Execute{}, kvpError(wps.ErrMissingParameter, "identifier", "")
	}
	p, err := processes.Lookup(id)
	if err != nil {
		return wps.Execute{}, err
	}
	exec := wps.Execute{RequestBase: base, Identifier: id}

	if raw := q.Get("datainputs"); raw != "" {
		inputs, err := parseDataInputs(raw, p)
		if err != nil {
			return wps.Execute{}, err
		}
		exec.Inputs = inputs
	}

	doc, raw := q.Get("responsedocument"), q.Get("rawdataoutput")
	if doc != "" && raw != "" {
		return wps.Execute{}, kvpError(wps.ErrInvalidRequest, "ResponseForm", "ResponseDocument and RawDataOutput are exclusive")
	}
	if raw != "" {
		defs, err := parseOutputDefinitions(raw)
		if err != nil {
			return wps.Execute{}, err
		}
		if len(defs) != 1 || defs[0].AsReference {
			return wps.Execute{}, kvpError(wps.ErrInvalidRawOutput, "RawDataOutput", "exactly one output without asReference is required")
		}
		exec.ResponseForm = wps.RawDataOutput{Output: defs[0].OutputDefinition}
		return exec, nil
	}

	var form wps.ResponseDocument
	set := false
	if doc != "" {
		defs, err := parseOutputDefinitions(doc)
		if err != nil {
			return wps.Execute{}, err
		}
		form.Outputs = defs
		set = true
	}
	for _, flag := range []struct {
		key string
		dst *bool
	}{
		{"lineage", &form.Lineage},
		{"status", &form.Status},
		{"storeexecuteresponse", &form.StoreExecuteResponse},
	} {
		v := q.Get(flag.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return wps.Execute{}, kvpError(wps.ErrInvalidRequest, flag.key, "not a boolean: "+v)
		}
		*flag.dst = b
		set = true
	}
	if set {
		exec.ResponseForm = form
	}
	return exec, nil
}

// splitItem splits "value@key=v@key=v" into the value and its attributes.
// Attribute names are lowercased.
func splitItem(item string) (string, map[string]string) {
	parts := strings.Split(item, "@")
	attrs := make(map[string]string, len(parts)-1)
	for _, a := range parts[1:] {
		k, v, _ := strings.Cut(a, "=")
		attrs[strings.ToLower(utils.Unescape(k))] = utils.Unescape(v)
	}
	return parts[0], attrs
}

func parseDataInputs(raw string, p wps.ProcessDescription) ([]wps.Input, error) {
	var inputs []wps.Input
	for _, item := range strings.Split(raw, ";") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		head, attrs := splitItem(item)
		key, value, _ := strings.Cut(head, "=")
		id := utils.Unescape(key)
		desc, ok := p.Input(id)
		if !ok {
			return nil, kvpError(wps.ErrUnknownInput, id, "not declared by process "+p.Identifier)
		}
		data, err := kvpData(id, utils.Unescape(value), attrs, desc.Data())
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, wps.Input{Identifier: id, Data: data})
	}
	return inputs, nil
}

func kvpFormat(attrs map[string]string) wps.Format {
	return wps.Format{MimeType: attrs["mimetype"], Encoding: attrs["encoding"], Schema: attrs["schema"]}
}

func kvpData(id, value string, attrs map[string]string, desc wps.DataDescription) (wps.Data, error) {
	href := attrs["xlink:href"]
	if href == "" {
		href = attrs["href"]
	}
	if href != "" {
		if _, ok := desc.(wps.ComplexDescription); !ok {
			return nil, kvpError(wps.ErrVariantMismatch, id, "only complex data can be given by reference")
		}
		ref := wps.Reference{
			Href:          href,
			Method:        wps.Method(strings.ToUpper(attrs["method"])),
			BodyReference: attrs["bodyreference"],
			Format:        kvpFormat(attrs),
		}
		if body := attrs["body"]; body != "" {
			ref.Body = []byte(body)
		}
		return wps.NewComplexReference(ref)
	}

	switch desc.(type) {
	case wps.ComplexDescription:
		return wps.NewComplexData(kvpFormat(attrs), []byte(value)), nil
	case wps.LiteralDescription:
		return wps.LiteralData{Value: value, DataType: attrs["datatype"], UOM: attrs["uom"]}, nil
	case wps.BoundingBoxDescription:
		return parseBoundingBoxKVP(id, value, attrs["crs"])
	default:
		return nil, kvpError(wps.ErrVariantMismatch, id, "input has no data description")
	}
}

// parseBoundingBoxKVP reads "minx,miny,...,maxx,maxy[,crs]".
func parseBoundingBoxKVP(id, value, crs string) (wps.Data, error) {
	fields := utils.SplitList(value)
	if n := len(fields); n > 0 {
		if _, err := strconv.ParseFloat(fields[n-1], 64); err != nil {
			crs, fields = fields[n-1], fields[:n-1]
		}
	}
	if len(fields) == 0 || len(fields)%2 != 0 {
		return nil, kvpError(wps.ErrValueNotAllowed, id, "bounding box needs an even number of coordinates")
	}
	coords := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, kvpError(wps.ErrValueNotAllowed, id, "coordinate "+f+" is not a number")
		}
		coords[i] = v
	}
	half := len(coords) / 2
	return wps.NewBoundingBoxData(crs, coords[:half], coords[half:])
}

func parseOutputDefinitions(raw string) ([]wps.DocumentOutputDefinition, error) {
	var defs []wps.DocumentOutputDefinition
	for _, item := range strings.Split(raw, ";") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		id, attrs := splitItem(item)
		def := wps.DocumentOutputDefinition{
			OutputDefinition: wps.OutputDefinition{
				Identifier: utils.Unescape(id),
				Format:     kvpFormat(attrs),
				UOM:        attrs["uom"],
			},
		}
		if v, ok := attrs["asreference"]; ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, kvpError(wps.ErrInvalidRequest, def.Identifier, "asReference is not a boolean: "+v)
			}
			def.AsReference = b
		}
		defs = append(defs, def)
	}
	return defs, nil
}
