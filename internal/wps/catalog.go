package wps

import "strings"

// AllProcesses is the DescribeProcess identifier selecting every offered process.
const AllProcesses = "ALL"

// Catalog is the set of processes a server offers, unique by identifier.
type Catalog struct {
	processes []ProcessDescription
	index     map[string]int
}

func NewCatalog(processes ...ProcessDescription) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(processes))}
	for _, p := range processes {
		if _, ok := c.index[p.Identifier]; ok {
			return nil, newError(ErrInvalidDescription, p.Identifier, "duplicate process identifier")
		}
		c.index[p.Identifier] = len(c.processes)
		c.processes = append(c.processes, p)
	}
	return c, nil
}

func (c *Catalog) Lookup(identifier string) (ProcessDescription, error) {
	i, ok := c.index[identifier]
	if !ok {
		return ProcessDescription{}, newError(ErrUnknownProcess, identifier, "")
	}
	return c.processes[i], nil
}

func (c *Catalog) Processes() []ProcessDescription {
	return append([]ProcessDescription(nil), c.processes...)
}

// Briefs returns the process offerings in catalog order.
func (c *Catalog) Briefs() []ProcessBrief {
	briefs := make([]ProcessBrief, 0, len(c.processes))
	for _, p := range c.processes {
		briefs = append(briefs, p.ProcessBrief)
	}
	return briefs
}

// Describe resolves DescribeProcess identifiers, expanding ALL.
func (c *Catalog) Describe(identifiers []string) ([]ProcessDescription, error) {
	var out []ProcessDescription
	for _, id := range identifiers {
		if strings.EqualFold(id, AllProcesses) {
			return c.Processes(), nil
		}
		p, err := c.Lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
