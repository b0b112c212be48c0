package main

import (
	"context"

	"github.com/trezcool/schooldash/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	return cli.usrSvc.ResetPassword(context.Background(), user.SetPassword{Username: uname, Password: pwd})
}
