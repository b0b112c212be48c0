package main

import (
	"context"
	"fmt"

	"github.com/trezcool/schooldash/core/user"
)

// addUser updates or creates an active account.
func (cli *commandLine) addUser(uname, role, pwd string) error {
	usr, err := cli.usrSvc.AddUser(context.Background(), user.NewUser{Username: uname, Role: role, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Printf("%s account %q saved\n", usr.Role, usr.Username)
	return nil
}
