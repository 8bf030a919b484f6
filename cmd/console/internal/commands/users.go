package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/cloudconsole/internal/view"
)

type UsersCmd struct {
	Select []string `help:"IDs of users to mark as selected"`
}

func (c *UsersCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := openSession(ctx, globals)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.svc.FetchUsers(ctx).Wait(ctx); err != nil {
		return err
	}

	var out string
	if err := s.do(ctx, func() {
		list := view.NewUserList(s.reg.Users)
		for _, id := range c.Select {
			list.Select(id, false)
		}
		out = list.Render()
	}); err != nil {
		return err
	}

	_, err = fmt.Fprintln(globals.out(), out)
	return err
}
