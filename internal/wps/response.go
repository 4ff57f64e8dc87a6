package wps

import (
	"time"

	"github.com/delta10/wpsd/internal/ows"
)

// OutputData is a produced output. Complex data given by reference is
// returned as an output reference.
type OutputData struct {
	Identifier string
	Title      string
	Abstract   string
	Data       Data
}

// ExecuteResponse is the document returned by Execute and republished at
// StatusLocation while the job runs. Values are snapshots: Advance returns a
// new response and leaves the receiver untouched.
type ExecuteResponse struct {
	Lang              string
	Process           ProcessBrief
	Status            Status
	DataInputs        []Input
	OutputDefinitions []DocumentOutputDefinition
	ProcessOutputs    []OutputData
	ServiceInstance   string
	StatusLocation    string
}

// NewExecuteResponse returns the Accepted response for req. The request
// inputs and output definitions are echoed when lineage is requested.
func NewExecuteResponse(req Execute, p ProcessDescription, serviceInstance string, at time.Time) ExecuteResponse {
	resp := ExecuteResponse{
		Lang:            req.Language,
		Process:         p.ProcessBrief,
		Status:          NewStatus("", at),
		ServiceInstance: serviceInstance,
	}
	if doc, ok := req.ResponseForm.(ResponseDocument); ok && doc.Lineage {
		resp.DataInputs = append([]Input(nil), req.Inputs...)
		resp.OutputDefinitions = append([]DocumentOutputDefinition(nil), doc.Outputs...)
	}
	return resp
}

// Advance moves the response through the status machine. Succeed attaches its outputs.
func (r ExecuteResponse) Advance(ev Event, at time.Time) (ExecuteResponse, error) {
	st, err := Advance(r.Status, ev, at)
	if err != nil {
		return r, err
	}
	next := r
	next.Status = st
	if s, ok := ev.(Succeed); ok {
		next.ProcessOutputs = append([]OutputData(nil), s.Outputs...)
	}
	return next, nil
}

type Languages struct {
	Default   string
	Supported []string
}

// Supports reports whether lang may be requested. An empty lang selects the default.
func (l Languages) Supports(lang string) bool {
	if lang == "" || lang == l.Default {
		return true
	}
	for _, s := range l.Supported {
		if s == lang {
			return true
		}
	}
	return false
}

// Capabilities is the GetCapabilities response.
type Capabilities struct {
	Lang                  string
	UpdateSequence        string
	ServiceIdentification ows.ServiceIdentification
	ServiceProvider       ows.ServiceProvider
	OperationsMetadata    ows.OperationsMetadata
	ProcessOfferings      []ProcessBrief
	Languages             Languages
	WSDL                  string
}

// ProcessDescriptions is the DescribeProcess response.
type ProcessDescriptions struct {
	Lang      string
	Processes []ProcessDescription
}
