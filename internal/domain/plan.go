package domain

// IntegrationPlan is the output of one planning pass. It depends only on
// the request and the current file system contents.
type IntegrationPlan struct {
	Scan    *ProjectScan `json:"scan"`
	Parts   []Part       `json:"parts"`
	Changes []Change     `json:"changes"`
}

// Actionable returns the changes that carry a patch.
func (p *IntegrationPlan) Actionable() []Change {
	var out []Change
	for _, c := range p.Changes {
		if !c.IsAdvisory() {
			out = append(out, c)
		}
	}
	return out
}

// ByModule groups the plan's changes by part, in planning order.
func (p *IntegrationPlan) ByModule() map[Part][]Change {
	out := make(map[Part][]Change)
	for _, c := range p.Changes {
		out[c.Module] = append(out[c.Module], c)
	}
	return out
}

// DefaultVerifyAttempts is the number of re-apply passes made after the
// initial apply before remaining changes are reported.
const DefaultVerifyAttempts = 2

// VerifyAttempt records one re-apply pass.
type VerifyAttempt struct {
	Attempt   int           `json:"attempt"`
	Remaining []string      `json:"remaining"`
	Results   []ApplyResult `json:"results"`
}

// VerifyReport is the outcome of an apply followed by verify passes.
type VerifyReport struct {
	Initial   []ApplyResult   `json:"initial"`
	Attempts  []VerifyAttempt `json:"attempts"`
	Remaining []string        `json:"remaining"`
	Converged bool            `json:"converged"`
}
