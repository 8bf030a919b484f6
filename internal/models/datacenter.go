package models

// Datacenter is a physical or logical location VPCs are placed in.
type Datacenter struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func (d Datacenter) EntityID() string { return d.ID }

func (d Datacenter) Clone() Datacenter { return d }
