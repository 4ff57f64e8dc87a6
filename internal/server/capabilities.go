package server

import (
	"github.com/delta10/wpsd/internal/ows"
	"github.com/delta10/wpsd/internal/wps"
)

func (s *Server) languages() wps.Languages {
	return wps.Languages{Default: s.config.Languages.Default, Supported: s.config.Languages.Supported}
}

func (s *Server) lang(requested string) string {
	if requested == "" {
		return s.config.Languages.Default
	}
	return requested
}

func (s *Server) capabilities(lang string) wps.Capabilities {
	endpoint := s.endpoint()
	svc := s.config.Service
	ops := make([]ows.Operation, 0, 3)
	for _, name := range []string{wps.OpGetCapabilities, wps.OpDescribeProcess, wps.OpExecute} {
		ops = append(ops, ows.Operation{Name: name, Get: endpoint, Post: endpoint})
	}
	return wps.Capabilities{
		Lang:           s.lang(lang),
		UpdateSequence: s.config.UpdateSequence,
		ServiceIdentification: ows.ServiceIdentification{
			Title:              svc.Title,
			Abstract:           svc.Abstract,
			Keywords:           svc.Keywords,
			ServiceType:        wps.Service,
			ServiceTypeVersion: []string{wps.Version},
			Fees:               svc.Fees,
			AccessConstraints:  svc.AccessConstraints,
		},
		ServiceProvider: ows.ServiceProvider{
			ProviderName: s.config.Provider.Name,
			ProviderSite: s.config.Provider.Site,
			ContactName:  s.config.Provider.ContactName,
			ContactEmail: s.config.Provider.ContactEmail,
		},
		OperationsMetadata: ows.OperationsMetadata{Operations: ops},
		ProcessOfferings:   s.registry.Catalog().Briefs(),
		Languages:          s.languages(),
	}
}
