// Package codec reads and writes the WPS 1.0.0 XML and KVP encodings of the
// wps data model.
package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/delta10/wpsd/internal/ows"
	"github.com/delta10/wpsd/internal/wps"
)

const (
	NamespaceWPS   = "http://www.opengis.net/wps/1.0.0"
	NamespaceOWS   = "http://www.opengis.net/ows/1.1"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
)

// ParseError reports a document that does not decode into the wps model.
// It matches wps.ErrParse and unwraps to the underlying cause.
type ParseError struct {
	Element string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", wps.ErrParse, e.Element, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == wps.ErrParse }

func parseError(element, format string, args ...any) error {
	return &ParseError{Element: element, Err: fmt.Errorf(format, args...)}
}

var errOneOf = errors.New("exactly one alternative must be present")

func marshal(v any) ([]byte, error) {
	b, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

func unmarshal(b []byte, element string, v any) error {
	if err := xml.Unmarshal(b, v); err != nil {
		return &ParseError{Element: element, Err: err}
	}
	return nil
}

// rootElement returns the name of the document element of b.
func rootElement(b []byte) (xml.Name, error) {
	d := xml.NewDecoder(bytes.NewReader(b))
	for {
		tok, err := d.Token()
		if err != nil {
			return xml.Name{}, &ParseError{Element: "document", Err: err}
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name, nil
		}
	}
}

// ParseRequest decodes a GetCapabilities, DescribeProcess or Execute document.
func ParseRequest(b []byte) (wps.Request, error) {
	name, err := rootElement(b)
	if err != nil {
		return nil, err
	}
	if name.Space != NamespaceWPS {
		return nil, parseError(name.Local, "element is not in namespace %s", NamespaceWPS)
	}
	switch name.Local {
	case wps.OpGetCapabilities:
		var x xmlGetCapabilities
		if err := unmarshal(b, name.Local, &x); err != nil {
			return nil, err
		}
		return fromXMLGetCapabilities(x), nil
	case wps.OpDescribeProcess:
		var x xmlDescribeProcess
		if err := unmarshal(b, name.Local, &x); err != nil {
			return nil, err
		}
		return fromXMLDescribeProcess(x), nil
	case wps.OpExecute:
		var x xmlExecute
		if err := unmarshal(b, name.Local, &x); err != nil {
			return nil, err
		}
		return fromXMLExecute(x)
	default:
		return nil, &ParseError{Element: name.Local, Err: wps.ErrOperationNotSupported}
	}
}

// EncodeRequest writes req as an XML document. Empty service and version
// attributes are written with their defaults.
func EncodeRequest(req wps.Request) ([]byte, error) {
	switch r := req.(type) {
	case wps.GetCapabilities:
		return marshal(toXMLGetCapabilities(r))
	case wps.DescribeProcess:
		return marshal(toXMLDescribeProcess(r))
	case wps.Execute:
		x, err := toXMLExecute(r)
		if err != nil {
			return nil, err
		}
		return marshal(x)
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", wps.ErrInvalidRequest, req)
	}
}

func EncodeCapabilities(c wps.Capabilities) ([]byte, error) {
	return marshal(toXMLCapabilities(c))
}

func DecodeCapabilities(b []byte) (wps.Capabilities, error) {
	var x xmlCapabilities
	if err := unmarshal(b, "Capabilities", &x); err != nil {
		return wps.Capabilities{}, err
	}
	return fromXMLCapabilities(x), nil
}

func EncodeProcessDescriptions(d wps.ProcessDescriptions) ([]byte, error) {
	x, err := toXMLProcessDescriptions(d)
	if err != nil {
		return nil, err
	}
	return marshal(x)
}

func DecodeProcessDescriptions(b []byte) (wps.ProcessDescriptions, error) {
	var x xmlProcessDescriptions
	if err := unmarshal(b, "ProcessDescriptions", &x); err != nil {
		return wps.ProcessDescriptions{}, err
	}
	return fromXMLProcessDescriptions(x)
}

func EncodeExecuteResponse(r wps.ExecuteResponse) ([]byte, error) {
	x, err := toXMLExecuteResponse(r)
	if err != nil {
		return nil, err
	}
	return marshal(x)
}

func DecodeExecuteResponse(b []byte) (wps.ExecuteResponse, error) {
	var x xmlExecuteResponse
	if err := unmarshal(b, "ExecuteResponse", &x); err != nil {
		return wps.ExecuteResponse{}, err
	}
	return fromXMLExecuteResponse(x)
}

func EncodeExceptionReport(r ows.ExceptionReport) ([]byte, error) {
	return marshal(toXMLExceptionReport(r))
}

func DecodeExceptionReport(b []byte) (ows.ExceptionReport, error) {
	var x xmlExceptionReport
	if err := unmarshal(b, "ExceptionReport", &x); err != nil {
		return ows.ExceptionReport{}, err
	}
	return fromXMLExceptionReport(x), nil
}

// encodePayload returns the inner XML of a complex data element. Well-formed
// XML fragments are embedded as is, anything else is wrapped in CDATA.
func encodePayload(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	if isXMLFragment(payload) {
		return string(payload)
	}
	return "<![CDATA[" + strings.ReplaceAll(string(payload), "]]>", "]]]]><![CDATA[>") + "]]>"
}

// decodePayload reverses encodePayload: character content is unescaped,
// element content is returned verbatim.
func decodePayload(content string) []byte {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	d := xml.NewDecoder(strings.NewReader(content))
	var text []byte
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return []byte(content)
		}
		cd, ok := tok.(xml.CharData)
		if !ok {
			return []byte(content)
		}
		text = append(text, cd...)
	}
	if len(text) == 0 {
		return nil
	}
	return text
}

func isXMLFragment(b []byte) bool {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '<' || bytes.HasPrefix(trimmed, []byte("<![CDATA[")) {
		return false
	}
	d := xml.NewDecoder(bytes.NewReader(b))
	depth, elements := 0, 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return elements > 0 && depth == 0
		}
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			elements++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return false
			}
		case xml.ProcInst:
			if t.Target == "xml" {
				return false
			}
		case xml.Directive:
			return false
		}
	}
}

func formatFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func parseFloats(element, s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, &ParseError{Element: element, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

type xmlBoundingBoxDocument struct {
	XMLName xml.Name `xml:"http://www.opengis.net/ows/1.1 BoundingBox"`
	xmlBoundingBox
}

// EncodeBoundingBox writes b as a standalone ows:BoundingBox document.
func EncodeBoundingBox(b ows.BoundingBox) ([]byte, error) {
	return marshal(xmlBoundingBoxDocument{xmlBoundingBox: *toXMLBoundingBox(b)})
}
