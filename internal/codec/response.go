package codec

import (
	"time"

	"github.com/delta10/wpsd/internal/ows"
	"github.com/delta10/wpsd/internal/wps"
)

func toXMLExceptionReport(r ows.ExceptionReport) xmlExceptionReport {
	x := xmlExceptionReport{Version: orDefault(r.Version, ows.ReportVersion), Lang: r.Lang}
	for _, e := range r.Exceptions {
		x.Exceptions = append(x.Exceptions, xmlException{Code: e.Code, Locator: e.Locator, Texts: e.Texts})
	}
	return x
}

func fromXMLExceptionReport(x xmlExceptionReport) ows.ExceptionReport {
	r := ows.ExceptionReport{Version: x.Version, Lang: x.Lang}
	for _, e := range x.Exceptions {
		ex := ows.Exception{Code: e.Code, Locator: e.Locator}
		if len(e.Texts) > 0 {
			ex.Texts = e.Texts
		}
		r.Exceptions = append(r.Exceptions, ex)
	}
	return r
}

func toXMLDescription(d wps.Description) xmlDescription {
	x := xmlDescription{Identifier: d.Identifier, Title: d.Title, Abstract: d.Abstract}
	for _, m := range d.Metadata {
		x.Metadata = append(x.Metadata, xmlMetadata{Title: m.Title, Href: m.Href, About: m.About})
	}
	return x
}

func fromXMLDescription(x xmlDescription) wps.Description {
	d := wps.Description{Identifier: x.Identifier, Title: x.Title, Abstract: x.Abstract}
	for _, m := range x.Metadata {
		d.Metadata = append(d.Metadata, ows.Metadata{Title: m.Title, Href: m.Href, About: m.About})
	}
	return d
}

func toXMLProcessBrief(b wps.ProcessBrief) xmlProcessBrief {
	x := xmlProcessBrief{
		ProcessVersion: b.ProcessVersion,
		xmlDescription: toXMLDescription(b.Description),
		Profiles:       b.Profiles,
	}
	if b.WSDL != "" {
		x.WSDL = &xmlLink{Href: b.WSDL}
	}
	return x
}

func fromXMLProcessBrief(x xmlProcessBrief) wps.ProcessBrief {
	b := wps.ProcessBrief{
		Description:    fromXMLDescription(x.xmlDescription),
		ProcessVersion: x.ProcessVersion,
	}
	if len(x.Profiles) > 0 {
		b.Profiles = x.Profiles
	}
	if x.WSDL != nil {
		b.WSDL = x.WSDL.Href
	}
	return b
}

func toXMLCapabilities(c wps.Capabilities) xmlCapabilities {
	si := c.ServiceIdentification
	x := xmlCapabilities{
		Service:        wps.Service,
		Version:        wps.Version,
		Lang:           c.Lang,
		UpdateSequence: c.UpdateSequence,
		ServiceIdentification: &xmlServiceIdentification{
			Title:              si.Title,
			Abstract:           si.Abstract,
			ServiceType:        orDefault(si.ServiceType, wps.Service),
			ServiceTypeVersion: si.ServiceTypeVersion,
			Fees:               si.Fees,
			AccessConstraints:  si.AccessConstraints,
		},
		Languages: xmlLanguages{
			Default:   xmlDefaultLanguage{Language: c.Languages.Default},
			Supported: xmlSupportedLanguages{Languages: c.Languages.Supported},
		},
	}
	if len(x.ServiceIdentification.ServiceTypeVersion) == 0 {
		x.ServiceIdentification.ServiceTypeVersion = []string{wps.Version}
	}
	if len(si.Keywords) > 0 {
		x.ServiceIdentification.Keywords = &xmlKeywords{Keywords: si.Keywords}
	}

	sp := c.ServiceProvider
	x.ServiceProvider = &xmlServiceProvider{
		ProviderName:   sp.ProviderName,
		ServiceContact: xmlServiceContact{IndividualName: sp.ContactName},
	}
	if sp.ProviderSite != "" {
		x.ServiceProvider.ProviderSite = &xmlLink{Href: sp.ProviderSite}
	}
	if sp.ContactEmail != "" {
		x.ServiceProvider.ServiceContact.ContactInfo = &xmlContactInfo{Address: &xmlAddress{ElectronicMailAddress: sp.ContactEmail}}
	}

	if len(c.OperationsMetadata.Operations) > 0 {
		x.OperationsMetadata = &xmlOperationsMetadata{}
		for _, op := range c.OperationsMetadata.Operations {
			xo := xmlOperation{Name: op.Name}
			if op.Get != "" {
				xo.DCP.HTTP.Get = &xmlLink{Href: op.Get}
			}
			if op.Post != "" {
				xo.DCP.HTTP.Post = &xmlLink{Href: op.Post}
			}
			x.OperationsMetadata.Operations = append(x.OperationsMetadata.Operations, xo)
		}
	}
	for _, b := range c.ProcessOfferings {
		x.ProcessOfferings.Processes = append(x.ProcessOfferings.Processes, toXMLProcessBrief(b))
	}
	if c.WSDL != "" {
		x.WSDL = &xmlLink{Href: c.WSDL}
	}
	return x
}

func fromXMLCapabilities(x xmlCapabilities) wps.Capabilities {
	c := wps.Capabilities{
		Lang:           x.Lang,
		UpdateSequence: x.UpdateSequence,
		Languages:      wps.Languages{Default: x.Languages.Default.Language},
	}
	if len(x.Languages.Supported.Languages) > 0 {
		c.Languages.Supported = x.Languages.Supported.Languages
	}
	if si := x.ServiceIdentification; si != nil {
		c.ServiceIdentification = ows.ServiceIdentification{
			Title:              si.Title,
			Abstract:           si.Abstract,
			ServiceType:        si.ServiceType,
			ServiceTypeVersion: si.ServiceTypeVersion,
			Fees:               si.Fees,
		}
		if si.Keywords != nil && len(si.Keywords.Keywords) > 0 {
			c.ServiceIdentification.Keywords = si.Keywords.Keywords
		}
		if len(si.AccessConstraints) > 0 {
			c.ServiceIdentification.AccessConstraints = si.AccessConstraints
		}
	}
	if sp := x.ServiceProvider; sp != nil {
		c.ServiceProvider = ows.ServiceProvider{
			ProviderName: sp.ProviderName,
			ContactName:  sp.ServiceContact.IndividualName,
		}
		if sp.ProviderSite != nil {
			c.ServiceProvider.ProviderSite = sp.ProviderSite.Href
		}
		if ci := sp.ServiceContact.ContactInfo; ci != nil && ci.Address != nil {
			c.ServiceProvider.ContactEmail = ci.Address.ElectronicMailAddress
		}
	}
	if om := x.OperationsMetadata; om != nil {
		for _, xo := range om.Operations {
			op := ows.Operation{Name: xo.Name}
			if xo.DCP.HTTP.Get != nil {
				op.Get = xo.DCP.HTTP.Get.Href
			}
			if xo.DCP.HTTP.Post != nil {
				op.Post = xo.DCP.HTTP.Post.Href
			}
			c.OperationsMetadata.Operations = append(c.OperationsMetadata.Operations, op)
		}
	}
	for _, b := range x.ProcessOfferings.Processes {
		c.ProcessOfferings = append(c.ProcessOfferings, fromXMLProcessBrief(b))
	}
	if x.WSDL != nil {
		c.WSDL = x.WSDL.Href
	}
	return c
}

func toXMLProcessDescriptions(d wps.ProcessDescriptions) (xmlProcessDescriptions, error) {
	x := xmlProcessDescriptions{Service: wps.Service, Version: wps.Version, Lang: d.Lang}
	for _, p := range d.Processes {
		xp, err := toXMLProcessDescription(p)
		if err != nil {
			return xmlProcessDescriptions{}, err
		}
		x.Processes = append(x.Processes, xp)
	}
	return x, nil
}

func fromXMLProcessDescriptions(x xmlProcessDescriptions) (wps.ProcessDescriptions, error) {
	d := wps.ProcessDescriptions{Lang: x.Lang}
	for _, xp := range x.Processes {
		p, err := fromXMLProcessDescription(xp)
		if err != nil {
			return wps.ProcessDescriptions{}, err
		}
		d.Processes = append(d.Processes, p)
	}
	return d, nil
}

func toXMLProcessDescription(p wps.ProcessDescription) (xmlProcessDescription, error) {
	brief := toXMLProcessBrief(p.ProcessBrief)
	x := xmlProcessDescription{
		ProcessVersion:  brief.ProcessVersion,
		StoreSupported:  p.StoreSupported,
		StatusSupported: p.StatusSupported,
		xmlDescription:  brief.xmlDescription,
		Profiles:        brief.Profiles,
		WSDL:            brief.WSDL,
	}
	if inputs := p.Inputs(); len(inputs) > 0 {
		x.DataInputs = &xmlDataInputDescriptions{}
		for _, in := range inputs {
			xi := xmlInputDescription{
				MinOccurs:      in.MinOccurs(),
				MaxOccurs:      in.MaxOccurs(),
				xmlDescription: toXMLDescription(in.Description),
			}
			switch d := in.Data().(type) {
			case wps.ComplexDescription:
				xi.ComplexData = toXMLComplexDescription(d)
			case wps.LiteralDescription:
				xi.LiteralData = toXMLLiteralDescription(d)
			case wps.BoundingBoxDescription:
				xi.BoundingBoxData = toXMLBoundingBoxDescription(d)
			default:
				return xmlProcessDescription{}, parseError(in.Identifier, "cannot encode description of type %T", d)
			}
			x.DataInputs.Inputs = append(x.DataInputs.Inputs, xi)
		}
	}
	for _, out := range p.Outputs() {
		xo := xmlOutputDescription{xmlDescription: toXMLDescription(out.Description)}
		switch d := out.Data().(type) {
		case wps.ComplexDescription:
			xo.ComplexOutput = toXMLComplexDescription(d)
		case wps.LiteralDescription:
			xo.LiteralOutput = toXMLLiteralDescription(d)
		case wps.BoundingBoxDescription:
			xo.BoundingBoxOutput = toXMLBoundingBoxDescription(d)
		default:
			return xmlProcessDescription{}, parseError(out.Identifier, "cannot encode description of type %T", d)
		}
		x.ProcessOutputs.Outputs = append(x.ProcessOutputs.Outputs, xo)
	}
	return x, nil
}

func fromXMLProcessDescription(x xmlProcessDescription) (wps.ProcessDescription, error) {
	brief := fromXMLProcessBrief(xmlProcessBrief{
		ProcessVersion: x.ProcessVersion,
		xmlDescription: x.xmlDescription,
		Profiles:       x.Profiles,
		WSDL:           x.WSDL,
	})
	var inputs []wps.InputDescription
	if x.DataInputs != nil {
		for _, xi := range x.DataInputs.Inputs {
			data, err := fromXMLDataDescription(xi.Identifier, xi.ComplexData, xi.LiteralData, xi.BoundingBoxData)
			if err != nil {
				return wps.ProcessDescription{}, err
			}
			in, err := wps.NewInputDescription(fromXMLDescription(xi.xmlDescription), data, xi.MinOccurs, xi.MaxOccurs)
			if err != nil {
				return wps.ProcessDescription{}, &ParseError{Element: xi.Identifier, Err: err}
			}
			inputs = append(inputs, in)
		}
	}
	var outputs []wps.OutputDescription
	for _, xo := range x.ProcessOutputs.Outputs {
		data, err := fromXMLDataDescription(xo.Identifier, xo.ComplexOutput, xo.LiteralOutput, xo.BoundingBoxOutput)
		if err != nil {
			return wps.ProcessDescription{}, err
		}
		out, err := wps.NewOutputDescription(fromXMLDescription(xo.xmlDescription), data)
		if err != nil {
			return wps.ProcessDescription{}, &ParseError{Element: xo.Identifier, Err: err}
		}
		outputs = append(outputs, out)
	}
	p, err := wps.NewProcessDescription(brief, inputs, outputs)
	if err != nil {
		return wps.ProcessDescription{}, &ParseError{Element: x.Identifier, Err: err}
	}
	p.StatusSupported = x.StatusSupported
	p.StoreSupported = x.StoreSupported
	return p, nil
}

func toXMLComplexDescription(d wps.ComplexDescription) *xmlSupportedComplexData {
	def := d.Default()
	x := &xmlSupportedComplexData{
		MaximumMegabytes: d.MaximumMegabytes(),
		Default:          xmlDefaultFormat{Format: xmlFormat{MimeType: def.MimeType, Encoding: def.Encoding, Schema: def.Schema}},
	}
	for _, f := range d.Supported() {
		x.Supported.Formats = append(x.Supported.Formats, xmlFormat{MimeType: f.MimeType, Encoding: f.Encoding, Schema: f.Schema})
	}
	return x
}

func toXMLLiteralDescription(d wps.LiteralDescription) *xmlLiteralDescription {
	x := &xmlLiteralDescription{DefaultValue: d.DefaultValue}
	if d.DataType != (wps.DataType{}) {
		x.DataType = &xmlDataType{Name: d.DataType.Name, Reference: d.DataType.Reference}
	}
	if d.UOMs != nil {
		x.UOMs = &xmlUOMs{
			Default:   xmlDefaultUOM{UOM: d.UOMs.Default()},
			Supported: xmlSupportedUOMs{UOMs: d.UOMs.Supported()},
		}
	}
	switch dom := d.Domain.(type) {
	case wps.AnyValue:
		x.AnyValue = &xmlEmpty{}
	case wps.AllowedValues:
		av := &xmlAllowedValues{Values: dom.Values}
		for _, r := range dom.Ranges {
			av.Ranges = append(av.Ranges, xmlRange{Closure: r.Closure, Minimum: r.Minimum, Maximum: r.Maximum})
		}
		x.AllowedValues = av
	case wps.ValuesReference:
		x.ValuesReference = &xmlValuesReference{Reference: dom.Reference, ValuesForm: dom.ValuesForm}
	}
	return x
}

func toXMLBoundingBoxDescription(d wps.BoundingBoxDescription) *xmlBoundingBoxDescription {
	return &xmlBoundingBoxDescription{
		Default:   xmlDefaultCRS{CRS: d.Default()},
		Supported: xmlSupportedCRSs{CRSs: d.Supported()},
	}
}

func fromXMLDataDescription(locator string, c *xmlSupportedComplexData, l *xmlLiteralDescription, b *xmlBoundingBoxDescription) (wps.DataDescription, error) {
	switch {
	case c != nil && l == nil && b == nil:
		def := wps.Format{MimeType: c.Default.Format.MimeType, Encoding: c.Default.Format.Encoding, Schema: c.Default.Format.Schema}
		var supported []wps.Format
		for _, f := range c.Supported.Formats {
			supported = append(supported, wps.Format{MimeType: f.MimeType, Encoding: f.Encoding, Schema: f.Schema})
		}
		d, err := wps.NewComplexDescription(def, supported, c.MaximumMegabytes)
		if err != nil {
			return nil, &ParseError{Element: locator, Err: err}
		}
		return d, nil
	case l != nil && c == nil && b == nil:
		return fromXMLLiteralDescription(locator, *l)
	case b != nil && c == nil && l == nil:
		d, err := wps.NewBoundingBoxDescription(b.Default.CRS, b.Supported.CRSs)
		if err != nil {
			return nil, &ParseError{Element: locator, Err: err}
		}
		return d, nil
	default:
		return nil, &ParseError{Element: locator, Err: errOneOf}
	}
}

func fromXMLLiteralDescription(locator string, x xmlLiteralDescription) (wps.LiteralDescription, error) {
	d := wps.LiteralDescription{DefaultValue: x.DefaultValue}
	if x.DataType != nil {
		d.DataType = wps.DataType{Name: x.DataType.Name, Reference: x.DataType.Reference}
	}
	if x.UOMs != nil {
		u, err := wps.NewUOMs(x.UOMs.Default.UOM, x.UOMs.Supported.UOMs)
		if err != nil {
			return wps.LiteralDescription{}, &ParseError{Element: locator, Err: err}
		}
		d.UOMs = &u
	}
	switch {
	case x.AllowedValues != nil:
		av := wps.AllowedValues{}
		if len(x.AllowedValues.Values) > 0 {
			av.Values = x.AllowedValues.Values
		}
		for _, r := range x.AllowedValues.Ranges {
			av.Ranges = append(av.Ranges, wps.Range{Minimum: r.Minimum, Maximum: r.Maximum, Closure: r.Closure})
		}
		d.Domain = av
	case x.ValuesReference != nil:
		d.Domain = wps.ValuesReference{Reference: x.ValuesReference.Reference, ValuesForm: x.ValuesReference.ValuesForm}
	case x.AnyValue != nil:
		d.Domain = wps.AnyValue{}
	}
	return d, nil
}

func toXMLStatus(s wps.Status) xmlStatus {
	x := xmlStatus{CreationTime: s.CreationTime.UTC().Format(time.RFC3339Nano)}
	switch st := s.State.(type) {
	case wps.Accepted:
		msg := st.Message
		x.Accepted = &msg
	case wps.Started:
		x.Started = &xmlProcessStarted{PercentCompleted: st.PercentComplete, Message: st.Message}
	case wps.Paused:
		x.Paused = &xmlProcessStarted{PercentCompleted: st.PercentComplete, Message: st.Message}
	case wps.Succeeded:
		msg := st.Message
		x.Succeeded = &msg
	case wps.Failed:
		x.Failed = &xmlProcessFailed{Report: toXMLExceptionReport(st.Report)}
	}
	return x
}

func fromXMLStatus(x xmlStatus) (wps.Status, error) {
	t, err := time.Parse(time.RFC3339Nano, x.CreationTime)
	if err != nil {
		return wps.Status{}, &ParseError{Element: "creationTime", Err: err}
	}
	s := wps.Status{CreationTime: t}
	n := 0
	if x.Accepted != nil {
		s.State = wps.Accepted{Message: *x.Accepted}
		n++
	}
	if x.Started != nil {
		s.State = wps.Started{Message: x.Started.Message, PercentComplete: x.Started.PercentCompleted}
		n++
	}
	if x.Paused != nil {
		s.State = wps.Paused{Message: x.Paused.Message, PercentComplete: x.Paused.PercentCompleted}
		n++
	}
	if x.Succeeded != nil {
		s.State = wps.Succeeded{Message: *x.Succeeded}
		n++
	}
	if x.Failed != nil {
		s.State = wps.Failed{Report: fromXMLExceptionReport(x.Failed.Report)}
		n++
	}
	if n != 1 {
		return wps.Status{}, &ParseError{Element: "Status", Err: errOneOf}
	}
	if p, ok := s.PercentComplete(); ok && (p < 0 || p > wps.MaxPercentInFlight) {
		return wps.Status{}, parseError("percentCompleted", "%d is outside 0..%d", p, wps.MaxPercentInFlight)
	}
	return s, nil
}

func toXMLExecuteResponse(r wps.ExecuteResponse) (xmlExecuteResponse, error) {
	x := xmlExecuteResponse{
		Service:         wps.Service,
		Version:         wps.Version,
		Lang:            r.Lang,
		ServiceInstance: r.ServiceInstance,
		StatusLocation:  r.StatusLocation,
		Process:         toXMLProcessBrief(r.Process),
		Status:          toXMLStatus(r.Status),
	}
	if len(r.DataInputs) > 0 {
		inputs, err := toXMLInputs(r.DataInputs)
		if err != nil {
			return xmlExecuteResponse{}, err
		}
		x.DataInputs = inputs
	}
	if len(r.OutputDefinitions) > 0 {
		x.OutputDefinitions = &xmlOutputDefinitions{}
		for _, o := range r.OutputDefinitions {
			x.OutputDefinitions.Outputs = append(x.OutputDefinitions.Outputs, toXMLDocumentOutput(o))
		}
	}
	if len(r.ProcessOutputs) > 0 {
		x.ProcessOutputs = &xmlProcessOutputs{}
		for _, o := range r.ProcessOutputs {
			xo := xmlOutputData{Identifier: o.Identifier, Title: o.Title, Abstract: o.Abstract}
			if c, ok := o.Data.(wps.ComplexData); ok {
				if ref, ok := c.Reference(); ok {
					xo.Reference = &xmlOutputReference{Href: ref.Href, MimeType: ref.MimeType, Encoding: ref.Encoding, Schema: ref.Schema}
					x.ProcessOutputs.Outputs = append(x.ProcessOutputs.Outputs, xo)
					continue
				}
			}
			data, err := toXMLData(o.Identifier, o.Data)
			if err != nil {
				return xmlExecuteResponse{}, err
			}
			xo.Data = data
			x.ProcessOutputs.Outputs = append(x.ProcessOutputs.Outputs, xo)
		}
	}
	return x, nil
}

func fromXMLExecuteResponse(x xmlExecuteResponse) (wps.ExecuteResponse, error) {
	status, err := fromXMLStatus(x.Status)
	if err != nil {
		return wps.ExecuteResponse{}, err
	}
	r := wps.ExecuteResponse{
		Lang:            x.Lang,
		Process:         fromXMLProcessBrief(x.Process),
		Status:          status,
		ServiceInstance: x.ServiceInstance,
		StatusLocation:  x.StatusLocation,
	}
	if x.DataInputs != nil {
		inputs, err := fromXMLInputs(x.DataInputs)
		if err != nil {
			return wps.ExecuteResponse{}, err
		}
		r.DataInputs = inputs
	}
	if x.OutputDefinitions != nil {
		for _, o := range x.OutputDefinitions.Outputs {
			r.OutputDefinitions = append(r.OutputDefinitions, fromXMLDocumentOutput(o))
		}
	}
	if x.ProcessOutputs != nil {
		for _, xo := range x.ProcessOutputs.Outputs {
			o := wps.OutputData{Identifier: xo.Identifier, Title: xo.Title, Abstract: xo.Abstract}
			switch {
			case xo.Reference != nil && xo.Data == nil:
				ref := wps.Reference{
					Href:   xo.Reference.Href,
					Format: wps.Format{MimeType: xo.Reference.MimeType, Encoding: xo.Reference.Encoding, Schema: xo.Reference.Schema},
				}
				data, err := wps.NewComplexReference(ref)
				if err != nil {
					return wps.ExecuteResponse{}, err
				}
				o.Data = data
			case xo.Data != nil && xo.Reference == nil:
				data, err := fromXMLData(xo.Identifier, *xo.Data)
				if err != nil {
					return wps.ExecuteResponse{}, err
				}
				o.Data = data
			default:
				return wps.ExecuteResponse{}, &ParseError{Element: xo.Identifier, Err: errOneOf}
			}
			r.ProcessOutputs = append(r.ProcessOutputs, o)
		}
	}
	return r, nil
}
