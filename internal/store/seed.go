package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/cloudconsole/internal/models"
	"gopkg.in/yaml.v3"
)

// Seed is a fixture set loaded into empty stores at startup.
type Seed struct {
	Organizations []models.Organization `yaml:"organizations"`
	Datacenters   []models.Datacenter   `yaml:"datacenters"`
	Users         []models.User         `yaml:"users"`
	Vpcs          []models.Vpc          `yaml:"vpcs"`
}

// LoadSeedFile reads a YAML seed file.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed document. Unknown keys are rejected.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &seed, nil
}

// Apply creates every seeded entity. Referenced entities are created first.
// Entities that already exist are left unchanged so the seed can be applied
// on every start.
func (s *Seed) Apply(ctx context.Context, stores Stores) error {
	created := 0

	for _, org := range s.Organizations {
		ok, err := skipExisting(stores.Organizations.Create(ctx, org))
		if err != nil {
			return fmt.Errorf("failed to seed organization %s: %w", org.ID, err)
		}
		created += ok
	}
	for _, dc := range s.Datacenters {
		ok, err := skipExisting(stores.Datacenters.Create(ctx, dc))
		if err != nil {
			return fmt.Errorf("failed to seed datacenter %s: %w", dc.ID, err)
		}
		created += ok
	}
	for _, user := range s.Users {
		ok, err := skipExisting(stores.Users.Create(ctx, user))
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", user.ID, err)
		}
		created += ok
	}
	for _, vpc := range s.Vpcs {
		ok, err := skipExisting(stores.Vpcs.Create(ctx, vpc))
		if err != nil {
			return fmt.Errorf("failed to seed vpc %s: %w", vpc.ID, err)
		}
		created += ok
	}

	log.Info().Int("created", created).Msg("Applied seed")
	return nil
}

func skipExisting(err error) (int, error) {
	switch {
	case err == nil:
		return 1, nil
	case errors.Is(err, ErrAlreadyExists):
		return 0, nil
	default:
		return 0, err
	}
}
