package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/schooldash/apps/api/echo"
	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/school"
	"github.com/trezcool/schooldash/core/user"
	appfs "github.com/trezcool/schooldash/fs"
	emailsvc "github.com/trezcool/schooldash/services/email"
	logsvc "github.com/trezcool/schooldash/services/logger"
	mediasvc "github.com/trezcool/schooldash/services/media"
	sessionsvc "github.com/trezcool/schooldash/services/session"
	"github.com/trezcool/schooldash/storage/database"
	"github.com/trezcool/schooldash/storage/database/dummy"
	boiledrepos "github.com/trezcool/schooldash/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/schooldash/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(logsvc.NewLogrus(os.Stdout, conf), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	usrRepo, schoolRepo, closeDB, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = closeDB(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	media, err := mediasvc.NewDiskStore(conf.Server.MediaDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up media store: %v", err), err)
	}

	tokens := sessionsvc.NewMemoryStore()
	if conf.RedisURL != "" {
		if tokens, err = sessionsvc.NewRedisStore(context.Background(), conf.RedisURL); err != nil {
			logger.Fatal(fmt.Sprintf("setting up session store: %v", err), err)
		}
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	school.InitValidators(validate, translator)

	usrSvc := user.NewService(usrRepo, validate, translator)
	schoolSvc := school.NewService(schoolRepo, media, mailSvc, validate, translator, conf.Listing)

	if conf.Database.Engine == "memory" {
		if err = seedAdmin(context.Background(), usrSvc, conf.Seed); err != nil {
			logger.Fatal(fmt.Sprintf("seeding admin: %v", err), err)
		}
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(appfs.FS, logger, false)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server, err := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			SchoolSvc:  schoolSvc,
			Tokens:     tokens,
			Translator: translator,
		},
	)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpDB opens the configured database. The "memory" engine keeps everything in process, for demos.
func setUpDB(conf *core.Config) (user.Repository, school.Repository, func() error, error) {
	if conf.Database.Engine == "memory" {
		db, err := dummydb.Open()
		if err != nil {
			return nil, nil, nil, err
		}
		return dummydb.NewUserRepository(db), dummydb.NewSchoolRepository(db), db.Close, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return sqlxrepos.NewUserRepository(db), boiledrepos.NewSchoolRepository(db), db.Close, nil
}
