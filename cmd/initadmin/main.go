// Command initadmin creates the admin account or resets its password.
package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/logger"
)

type options struct {
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" default:"newsdesk.db" description:"SQLite path or postgres:// connection URL"`
	Username    string `short:"u" long:"username" env:"ADMIN_USERNAME" default:"admin" description:"Admin username"`
	Password    string `short:"p" long:"password" env:"ADMIN_PASSWORD" required:"true" description:"Admin password"`
}

func main() {
	log := logger.New("info", "pretty")

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	// 初始化数据库
	gdb, err := db.Open(db.Options{URL: opts.DatabaseURL})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close(gdb)

	if err := db.SetAdminPassword(gdb, opts.Username, opts.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to save admin account")
	}
	log.Info().Str("username", opts.Username).Msg("admin account ready")
}
