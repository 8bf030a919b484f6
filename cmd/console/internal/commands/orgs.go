package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfeidau/cloudconsole/internal/models"
)

type OrgsCmd struct{}

func (c *OrgsCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := openSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.svc.FetchOrganizations(ctx).Wait(ctx); err != nil {
		return err
	}

	var orgs []models.Organization
	if err := s.do(ctx, func() {
		orgs = s.reg.Organizations.MutableCopy()
	}); err != nil {
		return err
	}

	printOrganizations(globals, orgs)
	return nil
}

func printOrganizations(globals *Globals, orgs []models.Organization) {
	w := globals.out()
	if len(orgs) == 0 {
		fmt.Fprintln(w, "No organizations found")
		return
	}

	fmt.Fprintf(w, "%-36s %-24s %s\n", "ID", "NAME", "ROLES")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, org := range orgs {
		fmt.Fprintf(w, "%-36s %-24s %s\n", org.ID, org.Name, strings.Join(org.Roles, ","))
	}
	fmt.Fprintf(w, "\nTotal: %d organizations\n", len(orgs))
}
