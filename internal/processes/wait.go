package processes

import (
	"context"
	"strconv"
	"time"

	"github.com/delta10/wpsd/internal/wps"
)

const waitSteps = 10

// Wait sleeps for the requested number of seconds while reporting progress.
// It exists to exercise asynchronous execution.
type Wait struct {
	desc wps.ProcessDescription
	unit time.Duration
}

func NewWait() *Wait {
	seconds := must(wps.NewInputDescription(
		wps.Description{Identifier: "seconds", Title: "Duration in seconds"},
		wps.LiteralDescription{
			DataType: xsType("integer"),
			Domain:   wps.AllowedValues{Ranges: []wps.Range{{Minimum: "0", Maximum: "60", Closure: wps.ClosureClosed}}},
		},
		1, 1,
	))
	message := must(wps.NewInputDescription(
		wps.Description{Identifier: "message", Title: "Message returned on completion"},
		wps.LiteralDescription{DataType: xsType("string"), DefaultValue: "done"},
		0, 1,
	))
	out := must(wps.NewOutputDescription(
		wps.Description{Identifier: "message", Title: "Message"},
		wps.LiteralDescription{DataType: xsType("string")},
	))

	desc := must(wps.NewProcessDescription(wps.ProcessBrief{
		Description: wps.Description{
			Identifier: "util:Wait",
			Title:      "Wait",
			Abstract:   "Waits and reports progress in ten steps.",
		},
		ProcessVersion: "1.0.0",
	}, []wps.InputDescription{seconds, message}, []wps.OutputDescription{out}))
	desc.StoreSupported = true
	desc.StatusSupported = true

	return &Wait{desc: desc, unit: time.Second}
}

func (w *Wait) Describe() wps.ProcessDescription { return w.desc }

func (w *Wait) Execute(ctx context.Context, inputs map[string][]wps.Data, r Reporter) (map[string]wps.Data, error) {
	v, _ := single(inputs, "seconds")
	seconds, err := strconv.Atoi(v.(wps.LiteralData).Value)
	if err != nil {
		return nil, &wps.Error{Kind: wps.ErrValueNotAllowed, Locator: "seconds", Msg: err.Error()}
	}
	message := "done"
	if m, ok := single(inputs, "message"); ok {
		message = m.(wps.LiteralData).Value
	}

	step := time.Duration(seconds) * w.unit / waitSteps
	for i := 1; i <= waitSteps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(step):
		}
		r.Progress(i*100/waitSteps, "waited "+strconv.Itoa(i)+"/"+strconv.Itoa(waitSteps))
	}

	return map[string]wps.Data{
		"message": wps.LiteralData{Value: message, DataType: "xs:string"},
	}, nil
}
