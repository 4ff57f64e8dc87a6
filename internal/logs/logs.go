package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/delta10/wpsd/internal/config"
)

// Auditor records job lifecycle events.
type Auditor interface {
	WriteLog(ctx context.Context, labels map[string]string, line map[string]string) error
}

func NewLogBackend(backend config.LogBackend) *LogBackend {
	return &LogBackend{
		Config: backend,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// LogBackend pushes audit lines to a Loki compatible push API.
type LogBackend struct {
	Config config.LogBackend
	Client *http.Client
}

type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]any           `json:"values"`
}

type Body struct {
	Streams []Stream `json:"streams"`
}

func (l *LogBackend) WriteLog(ctx context.Context, labels map[string]string, line map[string]string) error {
	parsedUrl, err := url.Parse(l.Config.BaseURL)
	if err != nil {
		return err
	}

	parsedUrl = parsedUrl.JoinPath("/api/v1/push")

	marshalledLine, err := json.Marshal(line)
	if err != nil {
		return err
	}

	stream := make(map[string]string, len(l.Config.Labels)+len(labels))
	for k, v := range l.Config.Labels {
		stream[k] = v
	}
	for k, v := range labels {
		stream[k] = v
	}

	body := Body{
		Streams: []Stream{
			{
				Stream: stream,
				Values: [][]any{
					{
						fmt.Sprint(time.Now().UnixNano()),
						string(marshalledLine),
					},
				},
			},
		},
	}

	marshalled, err := json.Marshal(body)
	if err != nil {
		return err
	}

	logRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, parsedUrl.String(), bytes.NewReader(marshalled))
	if err != nil {
		return err
	}

	logRequest.Header.Add("Content-Type", "application/json")

	logResponse, err := l.Client.Do(logRequest)
	if err != nil {
		return err
	}

	defer logResponse.Body.Close()

	if logResponse.StatusCode != http.StatusNoContent {
		return fmt.Errorf("could not create log entry: log backend returned %d", logResponse.StatusCode)
	}

	return nil
}

// Discard is an Auditor that drops every line.
type Discard struct{}

func (Discard) WriteLog(context.Context, map[string]string, map[string]string) error { return nil }
