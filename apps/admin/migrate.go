package main

import (
	"errors"

	"github.com/trezcool/schooldash/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

var errNoDatabase = errors.New("migrations need a SQL database; the memory engine has none")

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
