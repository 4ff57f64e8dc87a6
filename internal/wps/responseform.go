package wps

// ResponseForm is either a RawDataOutput or a ResponseDocument.
type ResponseForm interface {
	isResponseForm()
}

// OutputDefinition selects an output and the format it should be returned in.
type OutputDefinition struct {
	Identifier string
	Format
	UOM string
}

// RawDataOutput returns a single output directly as the HTTP response body.
type RawDataOutput struct {
	Output OutputDefinition
}

type DocumentOutputDefinition struct {
	OutputDefinition
	Title       string
	Abstract    string
	AsReference bool
}

// ResponseDocument wraps the selected outputs in an ExecuteResponse.
type ResponseDocument struct {
	Outputs              []DocumentOutputDefinition
	Lineage              bool
	Status               bool
	StoreExecuteResponse bool
}

func (RawDataOutput) isResponseForm()    {}
func (ResponseDocument) isResponseForm() {}

// ValidateResponseForm checks form against the capabilities of p. The first
// failing rule wins: raw output resolution, status without store, status
// support, store support, then output selection.
func ValidateResponseForm(form ResponseForm, p ProcessDescription) error {
	switch f := form.(type) {
	case nil:
		return nil
	case RawDataOutput:
		out, err := rawOutput(f, p)
		if err != nil {
			return err
		}
		return checkOutputFormat(f.Output, out)
	case ResponseDocument:
		if f.Status && !f.StoreExecuteResponse {
			return newError(ErrInvalidStatusRequest, "status", "")
		}
		if f.Status && !p.StatusSupported {
			return newError(ErrStatusNotSupported, p.Identifier, "")
		}
		for _, o := range f.Outputs {
			if o.AsReference && !p.StoreSupported {
				return newError(ErrStoreNotSupported, o.Identifier, "asReference requires a process that supports storage")
			}
		}
		seen := make(map[string]bool, len(f.Outputs))
		for _, o := range f.Outputs {
			out, ok := p.Output(o.Identifier)
			if !ok {
				return newError(ErrUnknownOutput, o.Identifier, "not declared by process %s", p.Identifier)
			}
			if seen[o.Identifier] {
				return newError(ErrUnknownOutput, o.Identifier, "requested more than once")
			}
			seen[o.Identifier] = true
			if err := checkOutputFormat(o.OutputDefinition, out); err != nil {
				return err
			}
		}
		return nil
	default:
		return newError(ErrInvalidRequest, "ResponseForm", "unsupported response form %T", form)
	}
}

// rawOutput resolves the single output a raw response returns. An empty
// identifier is only unambiguous when the process has one output.
func rawOutput(f RawDataOutput, p ProcessDescription) (OutputDescription, error) {
	if f.Output.Identifier == "" {
		if len(p.outputs) != 1 {
			return OutputDescription{}, newError(ErrInvalidRawOutput, p.Identifier, "process declares %d outputs, raw output must name one", len(p.outputs))
		}
		return p.outputs[0], nil
	}
	out, ok := p.Output(f.Output.Identifier)
	if !ok {
		return OutputDescription{}, newError(ErrUnknownOutput, f.Output.Identifier, "not declared by process %s", p.Identifier)
	}
	return out, nil
}

func checkOutputFormat(def OutputDefinition, out OutputDescription) error {
	switch d := out.data.(type) {
	case ComplexDescription:
		if !def.Format.IsZero() && !d.Supports(def.Format) {
			return newError(ErrSchemaMismatch, out.Identifier, "format %s is not supported", formatString(def.Format.orDefault(d.defaultFormat)))
		}
	case LiteralDescription:
		if def.UOM != "" && (d.UOMs == nil || !d.UOMs.Supports(def.UOM)) {
			return newError(ErrSchemaMismatch, out.Identifier, "uom %s is not supported", def.UOM)
		}
	}
	return nil
}

// SelectedOutputs returns the outputs a response form asks for, with the
// identifier of a raw output resolved. A nil form selects every output.
func SelectedOutputs(form ResponseForm, p ProcessDescription) []DocumentOutputDefinition {
	switch f := form.(type) {
	case RawDataOutput:
		def := f.Output
		if def.Identifier == "" && len(p.outputs) == 1 {
			def.Identifier = p.outputs[0].Identifier
		}
		return []DocumentOutputDefinition{{OutputDefinition: def}}
	case ResponseDocument:
		if len(f.Outputs) > 0 {
			return append([]DocumentOutputDefinition(nil), f.Outputs...)
		}
	}
	defs := make([]DocumentOutputDefinition, 0, len(p.outputs))
	for _, out := range p.outputs {
		defs = append(defs, DocumentOutputDefinition{OutputDefinition: OutputDefinition{Identifier: out.Identifier}})
	}
	return defs
}
