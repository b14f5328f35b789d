// Package politicians provides the canonical politician registry queried
// during mention resolution. Registry data is read-only disambiguation
// material; it has no lifecycle of its own within this engine.
package politicians

// Politician is a canonical politician record used as a resolution candidate.
type Politician struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	PartyName *string `json:"party_name,omitempty"`

	// Descriptive hints shown to the oracle when arbitrating.
	Position   *string `json:"position,omitempty"`
	Prefecture *string `json:"prefecture,omitempty"`
}

// Party returns the party name or "" when unset.
func (p Politician) Party() string {
	if p.PartyName == nil {
		return ""
	}
	return *p.PartyName
}
