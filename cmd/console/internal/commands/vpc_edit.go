package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfeidau/cloudconsole/internal/models"
	"github.com/wolfeidau/cloudconsole/internal/view"
)

var ErrVpcNotFound = errors.New("vpc not found")

type VpcSetCmd struct {
	ID    string `help:"ID of the VPC to change" required:""`
	Field string `help:"Field to change" required:"" enum:"name,network,organization,datacenter"`
	Value string `help:"New value, empty clears the field" default:""`
}

func (c *VpcSetCmd) Run(ctx context.Context, globals *Globals) error {
	card, err := editVpc(ctx, globals, c.ID, func(ctx context.Context, e *view.VpcEditor) error {
		if err := e.Set(c.Field, c.Value); err != nil {
			return err
		}
		return e.Save(ctx)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(globals.out(), card)
	return nil
}

type VpcCreateCmd struct {
	Name         string `help:"Name of the VPC" required:""`
	Network      string `help:"IPv4 or IPv6 CIDR, e.g. 10.97.0.0/16" required:""`
	Organization string `help:"Owning organization ID" default:""`
	Datacenter   string `help:"Datacenter ID" default:""`
}

func (c *VpcCreateCmd) Run(ctx context.Context, globals *Globals) error {
	card, err := editVpc(ctx, globals, "", func(ctx context.Context, e *view.VpcEditor) error {
		fields := []struct{ name, value string }{
			{models.VpcFieldName, c.Name},
			{models.VpcFieldNetwork, c.Network},
			{models.VpcFieldOrganization, c.Organization},
			{models.VpcFieldDatacenter, c.Datacenter},
		}
		for _, f := range fields {
			if err := e.Set(f.name, f.value); err != nil {
				return err
			}
		}
		return e.Save(ctx)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(globals.out(), card)
	return nil
}

type VpcRmCmd struct {
	ID string `help:"ID of the VPC to delete" required:""`
}

func (c *VpcRmCmd) Run(ctx context.Context, globals *Globals) error {
	_, err := editVpc(ctx, globals, c.ID, func(ctx context.Context, e *view.VpcEditor) error {
		return e.Delete(ctx)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(globals.out(), "Deleted vpc %s\n", c.ID)
	return nil
}

// editVpc mounts an editor for the VPC with the given ID, or a blank one when
// id is empty, runs op on the loop and waits for the editor to settle. State
// transitions are printed as they happen. It returns the rendered editor.
func editVpc(ctx context.Context, globals *Globals, id string, op func(context.Context, *view.VpcEditor) error) (string, error) {
	s, err := openSession(ctx, globals)
	if err != nil {
		return "", err
	}
	defer s.Close()

	if err := s.svc.FetchAll(ctx).Wait(ctx); err != nil {
		return "", err
	}

	w := globals.out()
	settled := make(chan struct{}, 1)

	var (
		editor  *view.VpcEditor
		opErr   error
		waiting bool
	)
	err = s.do(ctx, func() {
		var vpc models.Vpc
		if id != "" {
			found, ok := s.reg.Vpcs.ByID(id)
			if !ok {
				opErr = fmt.Errorf("%w: %s", ErrVpcNotFound, id)
				return
			}
			vpc = found
		}

		editor = view.NewVpcEditor(s.reg, s.svc, vpc)
		editor.Mount()

		var last string
		editor.OnUpdate = func() {
			st := editor.State()
			if line := describeState(st); line != "" && line != last {
				fmt.Fprintln(w, line)
				last = line
			}
			if waiting && !st.Disabled {
				select {
				case settled <- struct{}{}:
				default:
				}
			}
		}

		opErr = op(ctx, editor)
		waiting = opErr == nil && editor.State().Disabled
	})
	if err != nil {
		return "", err
	}
	if opErr != nil {
		if editor != nil {
			_ = s.do(ctx, editor.Unmount)
		}
		return "", opErr
	}

	if waiting {
		select {
		case <-settled:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	var (
		st   view.EditorState
		card string
	)
	if err := s.do(ctx, func() {
		editor.Unmount()
		st = editor.State()
		card = editor.Render()
	}); err != nil {
		return "", err
	}

	return card, st.Err
}

func describeState(st view.EditorState) string {
	switch {
	case st.Disabled:
		return "Saving..."
	case st.Err != nil:
		return "Error: " + st.Err.Error()
	case st.Message != "":
		return st.Message
	case st.Changed:
		return "Unsaved changes"
	default:
		return ""
	}
}
