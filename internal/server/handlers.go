package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/delta10/wpsd/internal/auth"
	"github.com/delta10/wpsd/internal/codec"
	"github.com/delta10/wpsd/internal/jobs"
	"github.com/delta10/wpsd/internal/ows"
	"github.com/delta10/wpsd/internal/wps"
)

const contentTypeXML = "text/xml; charset=utf-8"

func (s *Server) handleKVP(w http.ResponseWriter, r *http.Request) {
	query, err := codec.ParseQuery(r.URL.RawQuery)
	if err != nil {
		s.writeException(w, http.StatusBadRequest, err)
		return
	}
	req, err := codec.ParseKVP(query, s.registry)
	if err != nil {
		s.writeException(w, statusFor(err), err)
		return
	}
	s.dispatch(w, r, req)
}

func (s *Server) handleXML(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.Limits.MaxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeException(w, http.StatusRequestEntityTooLarge, &wps.Error{Kind: wps.ErrFileSizeExceeded, Locator: "request", Msg: err.Error()})
			return
		}
		s.writeException(w, http.StatusBadRequest, &codec.ParseError{Element: "request", Err: err})
		return
	}
	req, err := codec.ParseRequest(body)
	if err != nil {
		s.writeException(w, statusFor(err), err)
		return
	}
	s.dispatch(w, r, req)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req wps.Request) {
	if lang := req.Lang(); !s.languages().Supports(lang) {
		s.writeException(w, http.StatusBadRequest, &wps.Error{Kind: wps.ErrInvalidRequest, Locator: "language", Msg: "unsupported language " + lang})
		return
	}

	switch req := req.(type) {
	case wps.GetCapabilities:
		if err := req.Validate(); err != nil {
			s.writeException(w, statusFor(err), err)
			return
		}
		s.writeDocument(w, http.StatusOK, func() ([]byte, error) {
			return codec.EncodeCapabilities(s.capabilities(req.Language))
		})
	case wps.DescribeProcess:
		if err := req.Validate(); err != nil {
			s.writeException(w, statusFor(err), err)
			return
		}
		descs, err := s.registry.Catalog().Describe(req.Identifiers)
		if err != nil {
			s.writeException(w, statusFor(err), err)
			return
		}
		s.writeDocument(w, http.StatusOK, func() ([]byte, error) {
			return codec.EncodeProcessDescriptions(wps.ProcessDescriptions{Lang: s.lang(req.Language), Processes: descs})
		})
	case wps.Execute:
		s.execute(w, r, req)
	default:
		s.writeException(w, http.StatusBadRequest, &wps.Error{Kind: wps.ErrOperationNotSupported, Locator: req.Operation()})
	}
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, req wps.Execute) {
	ctx := r.Context()
	if p, ok := s.config.Process(req.Identifier); ok {
		claims, err := s.auth.Authorize(r, p.AllowedGroups)
		switch {
		case errors.Is(err, auth.ErrForbidden):
			s.writeException(w, http.StatusForbidden, err)
			return
		case err != nil:
			w.Header().Set("WWW-Authenticate", "Bearer")
			s.writeException(w, http.StatusUnauthorized, err)
			return
		}
		if claims != nil {
			ctx = auth.WithClaims(ctx, claims)
		}
	}

	req.Language = s.lang(req.Language)
	res, err := s.manager.Execute(ctx, req)
	if err != nil {
		s.writeException(w, statusFor(err), err)
		return
	}
	if res.Raw != nil {
		w.Header().Set("Content-Type", contentType(res.Raw.Format))
		w.WriteHeader(http.StatusOK)
		w.Write(res.Raw.Payload)
		return
	}
	s.writeDocument(w, http.StatusOK, func() ([]byte, error) {
		return codec.EncodeExecuteResponse(res.Response)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["job"]
	if job, ok := s.manager.Jobs().Get(id); ok && job.Stored {
		s.writeDocument(w, http.StatusOK, func() ([]byte, error) {
			return codec.EncodeExecuteResponse(job.Snapshot())
		})
		return
	}
	if s.store == nil {
		s.writeException(w, http.StatusNotFound, &wps.Error{Kind: wps.ErrStoreNotSupported, Locator: id})
		return
	}
	doc, err := s.store.LoadResponse(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		s.writeException(w, http.StatusNotFound, &wps.Error{Kind: wps.ErrInvalidRequest, Locator: id, Msg: "unknown job"})
		return
	}
	if err != nil {
		s.writeException(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeXML)
	w.Write(doc)
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if s.store == nil {
		s.writeException(w, http.StatusNotFound, &wps.Error{Kind: wps.ErrStoreNotSupported, Locator: vars["output"]})
		return
	}
	out, err := s.store.LoadOutput(r.Context(), vars["job"], vars["output"])
	if errors.Is(err, jobs.ErrNotFound) {
		s.writeException(w, http.StatusNotFound, &wps.Error{Kind: wps.ErrUnknownOutput, Locator: vars["output"], Msg: "no stored output for job " + vars["job"]})
		return
	}
	if err != nil {
		s.writeException(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentType(out.Format))
	w.Write(out.Payload)
}

// contentType renders a complex data format as a Content-Type. A character
// encoding becomes the charset parameter.
func contentType(f wps.Format) string {
	ct := f.MimeType
	if ct == "" {
		ct = "application/octet-stream"
	}
	if f.Encoding != "" && !strings.EqualFold(f.Encoding, "base64") {
		ct += "; charset=" + strings.ToLower(f.Encoding)
	}
	return ct
}

func (s *Server) writeDocument(w http.ResponseWriter, status int, encode func() ([]byte, error)) {
	doc, err := encode()
	if err != nil {
		s.writeException(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeXML)
	w.WriteHeader(status)
	w.Write(doc)
}

// writeException renders err as an OWS exception report.
func (s *Server) writeException(w http.ResponseWriter, status int, err error) {
	report := wps.ExceptionReportFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	doc, encErr := codec.EncodeExceptionReport(report)
	if encErr != nil {
		s.log.Error("could not encode exception report", "error", encErr)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeXML)
	w.WriteHeader(status)
	w.Write(doc)
}

// statusFor maps an error to the HTTP status of its exception report.
func statusFor(err error) int {
	report := wps.ExceptionReportFor(err)
	if len(report.Exceptions) == 0 {
		return http.StatusInternalServerError
	}
	switch report.Exceptions[0].Code {
	case ows.CodeNoApplicableCode:
		return http.StatusInternalServerError
	case ows.CodeOperationNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusBadRequest
	}
}
