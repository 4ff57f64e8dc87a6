package wps

import (
	"strings"

	"github.com/delta10/wpsd/internal/ows"
)

// Kind names the arm of a parameter data type.
type Kind int

const (
	KindComplex Kind = iota + 1
	KindLiteral
	KindBoundingBox
)

func (k Kind) String() string {
	switch k {
	case KindComplex:
		return "complex"
	case KindLiteral:
		return "literal"
	case KindBoundingBox:
		return "bounding box"
	default:
		return "unknown"
	}
}

// Description is the identity shared by processes, inputs and outputs.
type Description struct {
	Identifier string
	Title      string
	Abstract   string
	Metadata   []ows.Metadata
}

func (d Description) check(what string) error {
	if d.Identifier == "" {
		return newError(ErrInvalidDescription, what, "identifier is required")
	}
	if d.Title == "" {
		return newError(ErrInvalidDescription, d.Identifier, "%s title is required", what)
	}
	return nil
}

// Format is one mimeType/encoding/schema combination of complex data.
type Format struct {
	MimeType string
	Encoding string
	Schema   string
}

func (f Format) IsZero() bool {
	return f.MimeType == "" && f.Encoding == "" && f.Schema == ""
}

// orDefault fills an unspecified mime type from def.
func (f Format) orDefault(def Format) Format {
	if f.MimeType != "" {
		return f
	}
	f.MimeType = def.MimeType
	if f.Encoding == "" {
		f.Encoding = def.Encoding
	}
	if f.Schema == "" {
		f.Schema = def.Schema
	}
	return f
}

// matches treats an empty encoding or schema on f as unspecified.
func (f Format) matches(s Format) bool {
	if !strings.EqualFold(f.MimeType, s.MimeType) {
		return false
	}
	if f.Encoding != "" && !strings.EqualFold(f.Encoding, s.Encoding) {
		return false
	}
	return f.Schema == "" || f.Schema == s.Schema
}

// DataDescription declares which arm a parameter takes and what it accepts.
type DataDescription interface {
	Kind() Kind
	isDataDescription()
}

// ComplexDescription lists the formats accepted or produced for complex data.
type ComplexDescription struct {
	defaultFormat    Format
	supported        []Format
	maximumMegabytes int
}

// NewComplexDescription checks that def is one of the supported formats.
// maximumMegabytes of zero means unbounded and only applies to inputs.
func NewComplexDescription(def Format, supported []Format, maximumMegabytes int) (ComplexDescription, error) {
	if def.MimeType == "" {
		return ComplexDescription{}, newError(ErrInvalidDescription, "ComplexData", "default format needs a mime type")
	}
	if len(supported) == 0 {
		return ComplexDescription{}, newError(ErrInvalidDescription, "ComplexData", "supported formats must not be empty")
	}
	found := false
	for _, s := range supported {
		if s.MimeType == "" {
			return ComplexDescription{}, newError(ErrInvalidDescription, "ComplexData", "supported format needs a mime type")
		}
		if s == def {
			found = true
		}
	}
	if !found {
		return ComplexDescription{}, newError(ErrInvalidDescription, "ComplexData", "default format %s is not supported", def.MimeType)
	}
	if maximumMegabytes < 0 {
		return ComplexDescription{}, newError(ErrInvalidDescription, "ComplexData", "maximumMegabytes must not be negative")
	}
	return ComplexDescription{
		defaultFormat:    def,
		supported:        append([]Format(nil), supported...),
		maximumMegabytes: maximumMegabytes,
	}, nil
}

func (ComplexDescription) Kind() Kind         { return KindComplex }
func (ComplexDescription) isDataDescription() {}

func (c ComplexDescription) Default() Format { return c.defaultFormat }

func (c ComplexDescription) Supported() []Format { return append([]Format(nil), c.supported...) }

func (c ComplexDescription) MaximumMegabytes() int { return c.maximumMegabytes }

// Supports reports whether f, with unspecified fields taken from the default, is accepted.
func (c ComplexDescription) Supports(f Format) bool {
	f = f.orDefault(c.defaultFormat)
	for _, s := range c.supported {
		if f.matches(s) {
			return true
		}
	}
	return false
}

// UOMs is the default and supported units of measure of literal data.
type UOMs struct {
	def       string
	supported []string
}

func NewUOMs(def string, supported []string) (UOMs, error) {
	if def == "" {
		return UOMs{}, newError(ErrInvalidDescription, "UOMs", "default uom is required")
	}
	for _, s := range supported {
		if s == def {
			return UOMs{def: def, supported: append([]string(nil), supported...)}, nil
		}
	}
	return UOMs{}, newError(ErrInvalidDescription, "UOMs", "default uom %s is not supported", def)
}

func (u UOMs) Default() string     { return u.def }
func (u UOMs) Supported() []string { return append([]string(nil), u.supported...) }

func (u UOMs) Supports(uom string) bool {
	for _, s := range u.supported {
		if s == uom {
			return true
		}
	}
	return false
}

// DataType names the XML Schema type of a literal, optionally with a reference URI.
type DataType struct {
	Name      string
	Reference string
}

// LiteralDomain restricts the values a literal input accepts.
type LiteralDomain interface {
	isLiteralDomain()
}

type AnyValue struct{}

// Range closures.
const (
	ClosureClosed     = "closed"
	ClosureOpen       = "open"
	ClosureOpenClosed = "open-closed"
	ClosureClosedOpen = "closed-open"
)

// Range bounds a numeric literal. Empty bounds are unbounded.
type Range struct {
	Minimum string
	Maximum string
	Closure string
}

type AllowedValues struct {
	Values []string
	Ranges []Range
}

// ValuesReference points at an external list of allowed values.
type ValuesReference struct {
	Reference  string
	ValuesForm string
}

func (AnyValue) isLiteralDomain()        {}
func (AllowedValues) isLiteralDomain()   {}
func (ValuesReference) isLiteralDomain() {}

// LiteralDescription describes scalar data. Domain and DefaultValue apply to inputs only.
type LiteralDescription struct {
	DataType     DataType
	UOMs         *UOMs
	Domain       LiteralDomain
	DefaultValue string
}

func (LiteralDescription) Kind() Kind         { return KindLiteral }
func (LiteralDescription) isDataDescription() {}

// BoundingBoxDescription lists the CRSs accepted or produced for bounding boxes.
type BoundingBoxDescription struct {
	def       string
	supported []string
}

func NewBoundingBoxDescription(def string, supported []string) (BoundingBoxDescription, error) {
	if def == "" {
		return BoundingBoxDescription{}, newError(ErrInvalidDescription, "BoundingBoxData", "default crs is required")
	}
	for _, s := range supported {
		if s == def {
			return BoundingBoxDescription{def: def, supported: append([]string(nil), supported...)}, nil
		}
	}
	return BoundingBoxDescription{}, newError(ErrInvalidDescription, "BoundingBoxData", "default crs %s is not supported", def)
}

func (BoundingBoxDescription) Kind() Kind         { return KindBoundingBox }
func (BoundingBoxDescription) isDataDescription() {}

func (b BoundingBoxDescription) Default() string     { return b.def }
func (b BoundingBoxDescription) Supported() []string { return append([]string(nil), b.supported...) }

func (b BoundingBoxDescription) Supports(crs string) bool {
	if crs == "" {
		return true
	}
	for _, s := range b.supported {
		if s == crs {
			return true
		}
	}
	return false
}

// InputDescription describes one process input and how often it may occur.
type InputDescription struct {
	Description
	data      DataDescription
	minOccurs int
	maxOccurs int
}

func NewInputDescription(d Description, data DataDescription, minOccurs, maxOccurs int) (InputDescription, error) {
	if err := d.check("input"); err != nil {
		return InputDescription{}, err
	}
	if data == nil {
		return InputDescription{}, newError(ErrInvalidDescription, d.Identifier, "input needs a data description")
	}
	if minOccurs < 0 {
		return InputDescription{}, newError(ErrInvalidDescription, d.Identifier, "minOccurs must not be negative")
	}
	if maxOccurs < 1 {
		return InputDescription{}, newError(ErrInvalidDescription, d.Identifier, "maxOccurs must be at least 1")
	}
	if minOccurs > maxOccurs {
		return InputDescription{}, newError(ErrInvalidDescription, d.Identifier, "minOccurs %d exceeds maxOccurs %d", minOccurs, maxOccurs)
	}
	if lit, ok := data.(LiteralDescription); ok {
		if lit.Domain == nil {
			lit.Domain = AnyValue{}
		}
		if lit.DefaultValue != "" {
			if err := checkLiteral(d.Identifier, lit, lit.DefaultValue); err != nil {
				return InputDescription{}, newError(ErrInvalidDescription, d.Identifier, "default value: %v", err)
			}
		}
		data = lit
	}
	return InputDescription{Description: d, data: data, minOccurs: minOccurs, maxOccurs: maxOccurs}, nil
}

func (i InputDescription) Data() DataDescription { return i.data }
func (i InputDescription) MinOccurs() int        { return i.minOccurs }
func (i InputDescription) MaxOccurs() int        { return i.maxOccurs }

// OutputDescription describes one process output.
type OutputDescription struct {
	Description
	data DataDescription
}

func NewOutputDescription(d Description, data DataDescription) (OutputDescription, error) {
	if err := d.check("output"); err != nil {
		return OutputDescription{}, err
	}
	switch dd := data.(type) {
	case nil:
		return OutputDescription{}, newError(ErrInvalidDescription, d.Identifier, "output needs a data description")
	case ComplexDescription:
		if dd.maximumMegabytes > 0 {
			return OutputDescription{}, newError(ErrInvalidDescription, d.Identifier, "maximumMegabytes only applies to inputs")
		}
	case LiteralDescription:
		if dd.Domain != nil || dd.DefaultValue != "" {
			return OutputDescription{}, newError(ErrInvalidDescription, d.Identifier, "allowed values and default value only apply to inputs")
		}
	}
	return OutputDescription{Description: d, data: data}, nil
}

func (o OutputDescription) Data() DataDescription { return o.data }

// ProcessBrief is the summary of a process listed in capabilities and echoed in responses.
type ProcessBrief struct {
	Description
	ProcessVersion string
	Profiles       []string
	WSDL           string
}

func (b ProcessBrief) check() error {
	if err := b.Description.check("process"); err != nil {
		return err
	}
	if b.ProcessVersion == "" {
		return newError(ErrInvalidDescription, b.Identifier, "processVersion is required")
	}
	return nil
}

// ProcessDescription is the full DescribeProcess answer for a single process.
type ProcessDescription struct {
	ProcessBrief
	StatusSupported bool
	StoreSupported  bool

	inputs  []InputDescription
	outputs []OutputDescription
}

func NewProcessDescription(brief ProcessBrief, inputs []InputDescription, outputs []OutputDescription) (ProcessDescription, error) {
	if err := brief.check(); err != nil {
		return ProcessDescription{}, err
	}
	if len(outputs) == 0 {
		return ProcessDescription{}, newError(ErrInvalidDescription, brief.Identifier, "a process needs at least one output")
	}
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.Identifier] {
			return ProcessDescription{}, newError(ErrInvalidDescription, in.Identifier, "duplicate input identifier")
		}
		seen[in.Identifier] = true
	}
	seen = make(map[string]bool, len(outputs))
	for _, out := range outputs {
		if seen[out.Identifier] {
			return ProcessDescription{}, newError(ErrInvalidDescription, out.Identifier, "duplicate output identifier")
		}
		seen[out.Identifier] = true
	}
	return ProcessDescription{
		ProcessBrief: brief,
		inputs:       append([]InputDescription(nil), inputs...),
		outputs:      append([]OutputDescription(nil), outputs...),
	}, nil
}

func (p ProcessDescription) Inputs() []InputDescription {
	return append([]InputDescription(nil), p.inputs...)
}
func (p ProcessDescription) Outputs() []OutputDescription {
	return append([]OutputDescription(nil), p.outputs...)
}

func (p ProcessDescription) Input(identifier string) (InputDescription, bool) {
	for _, in := range p.inputs {
		if in.Identifier == identifier {
			return in, true
		}
	}
	return InputDescription{}, false
}

func (p ProcessDescription) Output(identifier string) (OutputDescription, bool) {
	for _, out := range p.outputs {
		if out.Identifier == identifier {
			return out, true
		}
	}
	return OutputDescription{}, false
}
