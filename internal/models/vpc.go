package models

import (
	"fmt"
	"net/netip"
)

// Editable VPC field names accepted by Vpc.Set.
const (
	VpcFieldName         = "name"
	VpcFieldNetwork      = "network"
	VpcFieldOrganization = "organization"
	VpcFieldDatacenter   = "datacenter"
)

// Vpc is a virtual private cloud network owned by an organization.
type Vpc struct {
	ID           string `json:"id" yaml:"id"` // UUIDv7, server assigned
	Name         string `json:"name" yaml:"name"`
	Network      string `json:"network" yaml:"network"` // CIDR, e.g. 10.97.0.0/16
	Organization string `json:"organization" yaml:"organization"`
	Datacenter   string `json:"datacenter" yaml:"datacenter"`
}

func (v Vpc) EntityID() string { return v.ID }

func (v Vpc) Clone() Vpc { return v }

// Set assigns an editable field by name.
// Returns ErrUnknownField for anything other than the VpcField* names.
func (v *Vpc) Set(field, value string) error {
	switch field {
	case VpcFieldName:
		v.Name = value
	case VpcFieldNetwork:
		v.Network = value
	case VpcFieldOrganization:
		v.Organization = value
	case VpcFieldDatacenter:
		v.Datacenter = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns the value of an editable field by name.
func (v *Vpc) Get(field string) (string, error) {
	switch field {
	case VpcFieldName:
		return v.Name, nil
	case VpcFieldNetwork:
		return v.Network, nil
	case VpcFieldOrganization:
		return v.Organization, nil
	case VpcFieldDatacenter:
		return v.Datacenter, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// ValidateNetwork checks the network is a valid CIDR prefix.
// An empty network is allowed for VPCs that have not been addressed yet.
func (v *Vpc) ValidateNetwork() error {
	if v.Network == "" {
		return nil
	}
	prefix, err := netip.ParsePrefix(v.Network)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidNetwork, v.Network, err)
	}
	if prefix.Masked() != prefix {
		return fmt.Errorf("%w %q: host bits set", ErrInvalidNetwork, v.Network)
	}
	return nil
}
