package wps

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/delta10/wpsd/internal/ows"
)

// Data is a single input or output value. Exactly one of ComplexData,
// LiteralData or BoundingBoxData.
type Data interface {
	Kind() Kind
	isData()
}

type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

type Header struct {
	Key   string
	Value string
}

// Reference points at a value served by URL. An empty Method means GET.
// Body and BodyReference are exclusive and only valid with POST.
type Reference struct {
	Href          string
	Method        Method
	Headers       []Header
	Body          []byte
	BodyReference string
	Format
}

func (r Reference) EffectiveMethod() Method {
	if r.Method == "" {
		return MethodGet
	}
	return r.Method
}

func (r Reference) Validate() error {
	if err := checkURL(r.Href); err != nil {
		return newError(ErrInvalidReference, r.Href, "href: %v", err)
	}
	switch r.EffectiveMethod() {
	case MethodGet:
		if len(r.Body) > 0 || r.BodyReference != "" {
			return newError(ErrInvalidReference, r.Href, "a body is only allowed with POST")
		}
	case MethodPost:
		if len(r.Body) > 0 && r.BodyReference != "" {
			return newError(ErrInvalidReference, r.Href, "body and bodyReference are exclusive")
		}
		if r.BodyReference != "" {
			if err := checkURL(r.BodyReference); err != nil {
				return newError(ErrInvalidReference, r.BodyReference, "bodyReference: %v", err)
			}
		}
	default:
		return newError(ErrInvalidReference, r.Href, "unsupported method %s", r.Method)
	}
	for _, h := range r.Headers {
		if h.Key == "" {
			return newError(ErrInvalidReference, r.Href, "header without key")
		}
	}
	return nil
}

func checkURL(raw string) error {
	if raw == "" {
		return errEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errRelativeURL
	}
	return nil
}

var (
	errEmptyURL    = errors.New("url is empty")
	errRelativeURL = errors.New("url must be absolute")
)

// ComplexData is a structured payload given inline or by reference.
type ComplexData struct {
	format  Format
	payload []byte
	ref     *Reference
}

// NewComplexData returns inline complex data.
func NewComplexData(f Format, payload []byte) ComplexData {
	if len(payload) == 0 {
		payload = nil
	}
	return ComplexData{format: f, payload: payload}
}

// NewComplexReference returns complex data fetched from ref. The format
// hints of ref become the format of the value.
func NewComplexReference(ref Reference) (ComplexData, error) {
	if err := ref.Validate(); err != nil {
		return ComplexData{}, err
	}
	r := ref
	r.Headers = append([]Header(nil), ref.Headers...)
	if len(r.Headers) == 0 {
		r.Headers = nil
	}
	if len(r.Body) == 0 {
		r.Body = nil
	}
	return ComplexData{format: ref.Format, ref: &r}, nil
}

func (ComplexData) Kind() Kind { return KindComplex }
func (ComplexData) isData()    {}

func (c ComplexData) Format() Format  { return c.format }
func (c ComplexData) Payload() []byte { return c.payload }

func (c ComplexData) Reference() (Reference, bool) {
	if c.ref == nil {
		return Reference{}, false
	}
	return *c.ref, true
}

// WithPayload returns inline data carrying the resolved payload of c.
func (c ComplexData) WithPayload(payload []byte) ComplexData {
	return NewComplexData(c.format, payload)
}

type LiteralData struct {
	Value    string
	DataType string
	UOM      string
}

func (LiteralData) Kind() Kind { return KindLiteral }
func (LiteralData) isData()    {}

type BoundingBoxData struct {
	ows.BoundingBox
}

func NewBoundingBoxData(crs string, lower, upper []float64) (BoundingBoxData, error) {
	box, err := ows.NewBoundingBox(crs, lower, upper)
	if err != nil {
		return BoundingBoxData{}, newError(ErrValueNotAllowed, "BoundingBoxData", "%v", err)
	}
	return BoundingBoxData{BoundingBox: box}, nil
}

func (BoundingBoxData) Kind() Kind { return KindBoundingBox }
func (BoundingBoxData) isData()    {}

// ValidateValue checks that v takes the arm d declares and one of the
// combinations d supports.
func ValidateValue(locator string, v Data, d DataDescription) error {
	if v == nil {
		return newError(ErrVariantMismatch, locator, "no value given")
	}
	if d == nil || v.Kind() != d.Kind() {
		want := "nothing"
		if d != nil {
			want = d.Kind().String()
		}
		return newError(ErrVariantMismatch, locator, "got %s data, want %s", v.Kind(), want)
	}
	switch val := v.(type) {
	case ComplexData:
		desc := d.(ComplexDescription)
		if !desc.Supports(val.format) {
			return newError(ErrSchemaMismatch, locator, "format %s is not supported", formatString(val.format.orDefault(desc.defaultFormat)))
		}
		if limit := desc.maximumMegabytes; limit > 0 && len(val.payload) > limit<<20 {
			return newError(ErrFileSizeExceeded, locator, "payload exceeds %d MB", limit)
		}
	case LiteralData:
		desc := d.(LiteralDescription)
		if val.UOM != "" && (desc.UOMs == nil || !desc.UOMs.Supports(val.UOM)) {
			return newError(ErrSchemaMismatch, locator, "uom %s is not supported", val.UOM)
		}
		if val.DataType != "" && desc.DataType.Name != "" && !sameDataType(val.DataType, desc.DataType) {
			return newError(ErrSchemaMismatch, locator, "data type %s differs from %s", val.DataType, desc.DataType.Name)
		}
		if err := checkLiteral(locator, desc, val.Value); err != nil {
			return err
		}
	case BoundingBoxData:
		desc := d.(BoundingBoxDescription)
		if !desc.Supports(val.CRS) {
			return newError(ErrSchemaMismatch, locator, "crs %s is not supported", val.CRS)
		}
	}
	return nil
}

func formatString(f Format) string {
	parts := []string{f.MimeType}
	if f.Encoding != "" {
		parts = append(parts, "encoding="+f.Encoding)
	}
	if f.Schema != "" {
		parts = append(parts, "schema="+f.Schema)
	}
	return strings.Join(parts, ";")
}

// baseType strips namespace prefixes and reference URIs down to the XML Schema local name.
func baseType(name string) string {
	if i := strings.LastIndexAny(name, "#:/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func sameDataType(given string, declared DataType) bool {
	g := baseType(given)
	return g == baseType(declared.Name) || (declared.Reference != "" && g == baseType(declared.Reference))
}

// checkLiteral verifies that value parses as the declared data type and lies in the domain.
func checkLiteral(locator string, desc LiteralDescription, value string) error {
	name := desc.DataType.Name
	if name == "" {
		name = desc.DataType.Reference
	}
	var err error
	switch baseType(name) {
	case "double", "float", "decimal":
		_, err = strconv.ParseFloat(value, 64)
	case "integer", "int", "long", "short", "byte":
		_, err = strconv.ParseInt(value, 10, 64)
	case "nonNegativeInteger", "unsignedInt", "unsignedLong":
		_, err = strconv.ParseUint(value, 10, 64)
	case "positiveInteger":
		var n uint64
		if n, err = strconv.ParseUint(value, 10, 64); err == nil && n == 0 {
			err = strconv.ErrRange
		}
	case "boolean":
		switch value {
		case "true", "false", "1", "0":
		default:
			err = strconv.ErrSyntax
		}
	case "dateTime":
		_, err = time.Parse(time.RFC3339, value)
	}
	if err != nil {
		return newError(ErrValueNotAllowed, locator, "%q is not a valid %s", value, name)
	}

	allowed, ok := desc.Domain.(AllowedValues)
	if !ok || (len(allowed.Values) == 0 && len(allowed.Ranges) == 0) {
		return nil
	}
	for _, v := range allowed.Values {
		if v == value {
			return nil
		}
	}
	if len(allowed.Ranges) > 0 {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			for _, r := range allowed.Ranges {
				if r.contains(f) {
					return nil
				}
			}
		}
	}
	return newError(ErrValueNotAllowed, locator, "%q is outside the allowed values", value)
}

func (r Range) contains(f float64) bool {
	closure := r.Closure
	if closure == "" {
		closure = ClosureClosed
	}
	if r.Minimum != "" {
		lo, err := strconv.ParseFloat(r.Minimum, 64)
		if err != nil {
			return false
		}
		open := closure == ClosureOpen || closure == ClosureOpenClosed
		if f < lo || (open && f == lo) {
			return false
		}
	}
	if r.Maximum != "" {
		hi, err := strconv.ParseFloat(r.Maximum, 64)
		if err != nil {
			return false
		}
		open := closure == ClosureOpen || closure == ClosureClosedOpen
		if f > hi || (open && f == hi) {
			return false
		}
	}
	return true
}
