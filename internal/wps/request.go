package wps

const (
	Service = "WPS"
	Version = "1.0.0"
)

// Operation names as they appear in KVP request parameters.
const (
	OpGetCapabilities = "GetCapabilities"
	OpDescribeProcess = "DescribeProcess"
	OpExecute         = "Execute"
)

// Request is one of GetCapabilities, DescribeProcess or Execute.
type Request interface {
	Operation() string
	Lang() string
}

// RequestBase holds the attributes common to DescribeProcess and Execute.
// Empty Service and Version mean the protocol defaults.
type RequestBase struct {
	Service  string
	Version  string
	Language string
	BaseURL  string
}

func (b RequestBase) Lang() string { return b.Language }

func (b RequestBase) validate() error {
	if b.Service != "" && b.Service != Service {
		return newError(ErrInvalidRequest, "service", "service must be %s, got %q", Service, b.Service)
	}
	if b.Version != "" && b.Version != Version {
		return newError(ErrVersionNegotiation, "version", "version must be %s, got %q", Version, b.Version)
	}
	return nil
}

type GetCapabilities struct {
	Service        string
	Language       string
	BaseURL        string
	AcceptVersions []string
}

func (GetCapabilities) Operation() string { return OpGetCapabilities }
func (g GetCapabilities) Lang() string    { return g.Language }

func (g GetCapabilities) Validate() error {
	if g.Service != "" && g.Service != Service {
		return newError(ErrInvalidRequest, "service", "service must be %s, got %q", Service, g.Service)
	}
	if len(g.AcceptVersions) == 0 {
		return nil
	}
	for _, v := range g.AcceptVersions {
		if v == Version {
			return nil
		}
	}
	return newError(ErrVersionNegotiation, "AcceptVersions", "only %s is supported", Version)
}

type DescribeProcess struct {
	RequestBase
	Identifiers []string
}

func (DescribeProcess) Operation() string { return OpDescribeProcess }

func (d DescribeProcess) Validate() error {
	if err := d.validate(); err != nil {
		return err
	}
	if len(d.Identifiers) == 0 {
		return newError(ErrInvalidRequest, "Identifier", "at least one process identifier is required")
	}
	for _, id := range d.Identifiers {
		if id == "" {
			return newError(ErrInvalidRequest, "Identifier", "empty process identifier")
		}
	}
	return nil
}

// Input is one value supplied for a process input.
type Input struct {
	Identifier string
	Title      string
	Abstract   string
	Data       Data
}

// Execute invokes a process. A nil ResponseForm asks for a response document
// holding every declared output in its default format.
type Execute struct {
	RequestBase
	Identifier   string
	Inputs       []Input
	ResponseForm ResponseForm
}

func (Execute) Operation() string { return OpExecute }

// Validate checks the request against the description of the process it invokes.
func (e Execute) Validate(p ProcessDescription) error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.Identifier == "" {
		return newError(ErrInvalidRequest, "Identifier", "process identifier is required")
	}
	if e.Identifier != p.Identifier {
		return newError(ErrUnknownProcess, e.Identifier, "request targets %s", p.Identifier)
	}
	counts := make(map[string]int, len(e.Inputs))
	for _, in := range e.Inputs {
		if _, ok := p.Input(in.Identifier); !ok {
			return newError(ErrUnknownInput, in.Identifier, "not declared by process %s", p.Identifier)
		}
		counts[in.Identifier]++
	}
	for _, desc := range p.inputs {
		n := counts[desc.Identifier]
		switch {
		case n == 0 && desc.minOccurs > 0:
			return newError(errMissingInput, desc.Identifier, "")
		case n < desc.minOccurs:
			return newError(ErrCardinalityViolation, desc.Identifier, "got %d occurrences, want at least %d", n, desc.minOccurs)
		case n > desc.maxOccurs:
			return newError(ErrCardinalityViolation, desc.Identifier, "got %d occurrences, want at most %d", n, desc.maxOccurs)
		}
	}
	for _, in := range e.Inputs {
		desc, _ := p.Input(in.Identifier)
		if err := ValidateValue(in.Identifier, in.Data, desc.data); err != nil {
			return err
		}
	}
	return ValidateResponseForm(e.ResponseForm, p)
}

// Occurrences groups the request inputs by identifier, in request order.
func (e Execute) Occurrences() map[string][]Data {
	out := make(map[string][]Data, len(e.Inputs))
	for _, in := range e.Inputs {
		out[in.Identifier] = append(out[in.Identifier], in.Data)
	}
	return out
}
