package models

// Organization represents an organization (tenant) in the console.
// VPCs and users are scoped to an organization.
type Organization struct {
	ID    string   `json:"id" yaml:"id"` // UUIDv7
	Name  string   `json:"name" yaml:"name"`
	Roles []string `json:"roles" yaml:"roles"`
}

func (o Organization) EntityID() string { return o.ID }

// Clone returns a copy of the organization safe for independent mutation.
func (o Organization) Clone() Organization {
	o.Roles = cloneStrings(o.Roles)
	return o
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
