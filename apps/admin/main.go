package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/user"
	logsvc "github.com/trezcool/schooldash/services/logger"
	"github.com/trezcool/schooldash/storage/database"
	"github.com/trezcool/schooldash/storage/database/dummy"
	sqlxrepos "github.com/trezcool/schooldash/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(logsvc.NewLogrus(os.Stderr, conf), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB
	var (
		db      *sql.DB
		usrRepo user.Repository
	)
	if conf.Database.Engine == "memory" {
		mem, _ := dummydb.Open()
		usrRepo = dummydb.NewUserRepository(mem)
	} else {
		if err := database.CreateIfNotExist(conf); err != nil {
			logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
		}
		sqlxDB, err := database.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer func() { _ = sqlxDB.Close() }()
		db = sqlxDB.DB
		usrRepo = sqlxrepos.NewUserRepository(sqlxDB)
	}

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(usrRepo, validate, translator),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
