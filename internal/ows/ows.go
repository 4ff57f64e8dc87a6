package ows

import (
	"errors"
	"fmt"
)

// Exception codes defined by OWS 1.1 and the WPS 1.0.0 extensions.
const (
	CodeMissingParameterValue    = "MissingParameterValue"
	CodeInvalidParameterValue    = "InvalidParameterValue"
	CodeNoApplicableCode         = "NoApplicableCode"
	CodeOperationNotSupported    = "OperationNotSupported"
	CodeVersionNegotiationFailed = "VersionNegotiationFailed"
	CodeInvalidUpdateSequence    = "InvalidUpdateSequence"
	CodeNotEnoughStorage         = "NotEnoughStorage"
	CodeServerBusy               = "ServerBusy"
	CodeFileSizeExceeded         = "FileSizeExceeded"
	CodeStorageNotSupported      = "StorageNotSupported"
)

// ReportVersion is the OWS exception report version used by WPS 1.0.0.
const ReportVersion = "1.0.0"

// Metadata is an opaque xlink reference attached to a description.
type Metadata struct {
	Title string
	Href  string
	About string
}

// BoundingBox is an OWS bounding box. Corners have one coordinate per dimension.
type BoundingBox struct {
	CRS         string
	Dimensions  int
	LowerCorner []float64
	UpperCorner []float64
}

// NewBoundingBox returns a bounding box whose dimension is derived from its corners.
func NewBoundingBox(crs string, lower, upper []float64) (BoundingBox, error) {
	if len(lower) == 0 {
		return BoundingBox{}, errors.New("bounding box needs at least one dimension")
	}
	if len(lower) != len(upper) {
		return BoundingBox{}, fmt.Errorf("bounding box corners differ in dimension: %d and %d", len(lower), len(upper))
	}
	return BoundingBox{
		CRS:         crs,
		Dimensions:  len(lower),
		LowerCorner: append([]float64(nil), lower...),
		UpperCorner: append([]float64(nil), upper...),
	}, nil
}

// Exception is a single entry in an ExceptionReport.
type Exception struct {
	Code    string
	Locator string
	Texts   []string
}

// ExceptionReport is the OWS error document.
type ExceptionReport struct {
	Version    string
	Lang       string
	Exceptions []Exception
}

// NewExceptionReport returns a report holding a single exception.
func NewExceptionReport(code, locator string, texts ...string) ExceptionReport {
	return ExceptionReport{
		Version: ReportVersion,
		Exceptions: []Exception{{
			Code:    code,
			Locator: locator,
			Texts:   texts,
		}},
	}
}

func (r ExceptionReport) Error() string {
	if len(r.Exceptions) == 0 {
		return "exception report"
	}
	e := r.Exceptions[0]
	msg := e.Code
	if e.Locator != "" {
		msg += " (" + e.Locator + ")"
	}
	if len(e.Texts) > 0 {
		msg += ": " + e.Texts[0]
	}
	return msg
}

type ServiceIdentification struct {
	Title              string
	Abstract           string
	Keywords           []string
	ServiceType        string
	ServiceTypeVersion []string
	Fees               string
	AccessConstraints  []string
}

type ServiceProvider struct {
	ProviderName string
	ProviderSite string
	ContactName  string
	ContactEmail string
}

// Operation lists the DCP endpoints of one operation.
type Operation struct {
	Name string
	Get  string
	Post string
}

type OperationsMetadata struct {
	Operations []Operation
}
