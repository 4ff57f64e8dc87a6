package codec

import (
	"github.com/delta10/wpsd/internal/ows"
	"github.com/delta10/wpsd/internal/wps"
)

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func toXMLGetCapabilities(r wps.GetCapabilities) xmlGetCapabilities {
	x := xmlGetCapabilities{
		Service:  orDefault(r.Service, wps.Service),
		Language: r.Language,
	}
	if len(r.AcceptVersions) > 0 {
		x.AcceptVersions = &xmlAcceptVersions{Versions: r.AcceptVersions}
	}
	return x
}

func fromXMLGetCapabilities(x xmlGetCapabilities) wps.GetCapabilities {
	r := wps.GetCapabilities{Service: x.Service, Language: x.Language}
	if x.AcceptVersions != nil && len(x.AcceptVersions.Versions) > 0 {
		r.AcceptVersions = x.AcceptVersions.Versions
	}
	return r
}

func toXMLDescribeProcess(r wps.DescribeProcess) xmlDescribeProcess {
	return xmlDescribeProcess{
		Service:     orDefault(r.Service, wps.Service),
		Version:     orDefault(r.Version, wps.Version),
		Language:    r.Language,
		Identifiers: r.Identifiers,
	}
}

func fromXMLDescribeProcess(x xmlDescribeProcess) wps.DescribeProcess {
	r := wps.DescribeProcess{
		RequestBase: wps.RequestBase{Service: x.Service, Version: x.Version, Language: x.Language},
	}
	if len(x.Identifiers) > 0 {
		r.Identifiers = x.Identifiers
	}
	return r
}

func toXMLExecute(r wps.Execute) (xmlExecute, error) {
	x := xmlExecute{
		Service:    orDefault(r.Service, wps.Service),
		Version:    orDefault(r.Version, wps.Version),
		Language:   r.Language,
		Identifier: r.Identifier,
	}
	if len(r.Inputs) > 0 {
		inputs, err := toXMLInputs(r.Inputs)
		if err != nil {
			return xmlExecute{}, err
		}
		x.DataInputs = inputs
	}
	switch f := r.ResponseForm.(type) {
	case nil:
	case wps.RawDataOutput:
		x.ResponseForm = &xmlResponseForm{RawDataOutput: toXMLOutputDefinition(f.Output)}
	case wps.ResponseDocument:
		doc := &xmlResponseDocument{
			StoreExecuteResponse: f.StoreExecuteResponse,
			Lineage:              f.Lineage,
			Status:               f.Status,
		}
		for _, o := range f.Outputs {
			doc.Outputs = append(doc.Outputs, toXMLDocumentOutput(o))
		}
		x.ResponseForm = &xmlResponseForm{ResponseDocument: doc}
	}
	return x, nil
}

func fromXMLExecute(x xmlExecute) (wps.Execute, error) {
	r := wps.Execute{
		RequestBase: wps.RequestBase{Service: x.Service, Version: x.Version, Language: x.Language},
		Identifier:  x.Identifier,
	}
	if x.DataInputs != nil {
		inputs, err := fromXMLInputs(x.DataInputs)
		if err != nil {
			return wps.Execute{}, err
		}
		r.Inputs = inputs
	}
	if f := x.ResponseForm; f != nil {
		switch {
		case f.RawDataOutput != nil && f.ResponseDocument == nil:
			r.ResponseForm = wps.RawDataOutput{Output: fromXMLOutputDefinition(*f.RawDataOutput)}
		case f.ResponseDocument != nil && f.RawDataOutput == nil:
			doc := wps.ResponseDocument{
				StoreExecuteResponse: f.ResponseDocument.StoreExecuteResponse,
				Lineage:              f.ResponseDocument.Lineage,
				Status:               f.ResponseDocument.Status,
			}
			for _, o := range f.ResponseDocument.Outputs {
				doc.Outputs = append(doc.Outputs, fromXMLDocumentOutput(o))
			}
			r.ResponseForm = doc
		default:
			return wps.Execute{}, &ParseError{Element: "ResponseForm", Err: errOneOf}
		}
	}
	return r, nil
}

func toXMLOutputDefinition(d wps.OutputDefinition) *xmlOutputDefinition {
	return &xmlOutputDefinition{
		MimeType:   d.MimeType,
		Encoding:   d.Encoding,
		Schema:     d.Schema,
		UOM:        d.UOM,
		Identifier: d.Identifier,
	}
}

func fromXMLOutputDefinition(x xmlOutputDefinition) wps.OutputDefinition {
	return wps.OutputDefinition{
		Identifier: x.Identifier,
		Format:     wps.Format{MimeType: x.MimeType, Encoding: x.Encoding, Schema: x.Schema},
		UOM:        x.UOM,
	}
}

func toXMLDocumentOutput(d wps.DocumentOutputDefinition) xmlDocumentOutputDefinition {
	return xmlDocumentOutputDefinition{
		MimeType:    d.MimeType,
		Encoding:    d.Encoding,
		Schema:      d.Schema,
		UOM:         d.UOM,
		AsReference: d.AsReference,
		Identifier:  d.Identifier,
		Title:       d.Title,
		Abstract:    d.Abstract,
	}
}

func fromXMLDocumentOutput(x xmlDocumentOutputDefinition) wps.DocumentOutputDefinition {
	return wps.DocumentOutputDefinition{
		OutputDefinition: wps.OutputDefinition{
			Identifier: x.Identifier,
			Format:     wps.Format{MimeType: x.MimeType, Encoding: x.Encoding, Schema: x.Schema},
			UOM:        x.UOM,
		},
		Title:       x.Title,
		Abstract:    x.Abstract,
		AsReference: x.AsReference,
	}
}

func toXMLInputs(inputs []wps.Input) (*xmlDataInputs, error) {
	x := &xmlDataInputs{}
	for _, in := range inputs {
		xi := xmlInput{Identifier: in.Identifier, Title: in.Title, Abstract: in.Abstract}
		if c, ok := in.Data.(wps.ComplexData); ok {
			if ref, ok := c.Reference(); ok {
				xi.Reference = toXMLInputReference(ref)
				x.Inputs = append(x.Inputs, xi)
				continue
			}
		}
		data, err := toXMLData(in.Identifier, in.Data)
		if err != nil {
			return nil, err
		}
		xi.Data = data
		x.Inputs = append(x.Inputs, xi)
	}
	return x, nil
}

func fromXMLInputs(x *xmlDataInputs) ([]wps.Input, error) {
	var inputs []wps.Input
	for _, xi := range x.Inputs {
		in := wps.Input{Identifier: xi.Identifier, Title: xi.Title, Abstract: xi.Abstract}
		switch {
		case xi.Reference != nil && xi.Data == nil:
			data, err := fromXMLInputReference(*xi.Reference)
			if err != nil {
				return nil, err
			}
			in.Data = data
		case xi.Data != nil && xi.Reference == nil:
			data, err := fromXMLData(xi.Identifier, *xi.Data)
			if err != nil {
				return nil, err
			}
			in.Data = data
		default:
			return nil, &ParseError{Element: xi.Identifier, Err: errOneOf}
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func toXMLInputReference(ref wps.Reference) *xmlInputReference {
	x := &xmlInputReference{
		Href:     ref.Href,
		Method:   string(ref.Method),
		MimeType: ref.MimeType,
		Encoding: ref.Encoding,
		Schema:   ref.Schema,
	}
	for _, h := range ref.Headers {
		x.Headers = append(x.Headers, xmlHeader{Key: h.Key, Value: h.Value})
	}
	if len(ref.Body) > 0 {
		x.Body = &xmlBody{Content: encodePayload(ref.Body)}
	}
	if ref.BodyReference != "" {
		x.BodyReference = &xmlBodyReference{Href: ref.BodyReference}
	}
	return x
}

func fromXMLInputReference(x xmlInputReference) (wps.ComplexData, error) {
	ref := wps.Reference{
		Href:   orDefault(x.Href, x.PlainHref),
		Method: wps.Method(x.Method),
		Format: wps.Format{MimeType: x.MimeType, Encoding: x.Encoding, Schema: x.Schema},
	}
	for _, h := range x.Headers {
		ref.Headers = append(ref.Headers, wps.Header{Key: h.Key, Value: h.Value})
	}
	if x.Body != nil {
		ref.Body = decodePayload(x.Body.Content)
	}
	if x.BodyReference != nil {
		ref.BodyReference = orDefault(x.BodyReference.Href, x.BodyReference.PlainHref)
	}
	return wps.NewComplexReference(ref)
}

func toXMLData(locator string, d wps.Data) (*xmlData, error) {
	switch v := d.(type) {
	case wps.ComplexData:
		f := v.Format()
		return &xmlData{ComplexData: &xmlComplexData{
			MimeType: f.MimeType,
			Encoding: f.Encoding,
			Schema:   f.Schema,
			Content:  encodePayload(v.Payload()),
		}}, nil
	case wps.LiteralData:
		return &xmlData{LiteralData: &xmlLiteralData{DataType: v.DataType, UOM: v.UOM, Value: v.Value}}, nil
	case wps.BoundingBoxData:
		return &xmlData{BoundingBoxData: toXMLBoundingBox(v.BoundingBox)}, nil
	default:
		return nil, parseError(locator, "cannot encode data of type %T", d)
	}
}

func fromXMLData(locator string, x xmlData) (wps.Data, error) {
	n := 0
	for _, present := range []bool{x.ComplexData != nil, x.LiteralData != nil, x.BoundingBoxData != nil} {
		if present {
			n++
		}
	}
	if n != 1 {
		return nil, &ParseError{Element: locator, Err: errOneOf}
	}
	switch {
	case x.ComplexData != nil:
		c := x.ComplexData
		return wps.NewComplexData(wps.Format{MimeType: c.MimeType, Encoding: c.Encoding, Schema: c.Schema}, decodePayload(c.Content)), nil
	case x.LiteralData != nil:
		return wps.LiteralData{Value: x.LiteralData.Value, DataType: x.LiteralData.DataType, UOM: x.LiteralData.UOM}, nil
	default:
		box, err := fromXMLBoundingBox(locator, *x.BoundingBoxData)
		if err != nil {
			return nil, err
		}
		return wps.BoundingBoxData{BoundingBox: box}, nil
	}
}

func toXMLBoundingBox(b ows.BoundingBox) *xmlBoundingBox {
	return &xmlBoundingBox{
		CRS:         b.CRS,
		Dimensions:  b.Dimensions,
		LowerCorner: formatFloats(b.LowerCorner),
		UpperCorner: formatFloats(b.UpperCorner),
	}
}

func fromXMLBoundingBox(locator string, x xmlBoundingBox) (ows.BoundingBox, error) {
	lower, err := parseFloats(locator, x.LowerCorner)
	if err != nil {
		return ows.BoundingBox{}, err
	}
	upper, err := parseFloats(locator, x.UpperCorner)
	if err != nil {
		return ows.BoundingBox{}, err
	}
	box, err := ows.NewBoundingBox(x.CRS, lower, upper)
	if err != nil {
		return ows.BoundingBox{}, &ParseError{Element: locator, Err: err}
	}
	if x.Dimensions != 0 && x.Dimensions != box.Dimensions {
		return ows.BoundingBox{}, parseError(locator, "dimensions %d do not match corners of dimension %d", x.Dimensions, box.Dimensions)
	}
	return box, nil
}
