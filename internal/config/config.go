package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// ErrHelpRequested is returned when the caller asked for --help.
var ErrHelpRequested = errors.New("help requested")

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr      string
	Port            string
	DatabaseURL     string
	SessionSecret   string
	GinMode         string
	UploadDir       string
	UploadURLPath   string
	MaxUploadSize   int64
	AdminUsername   string
	AdminPassword   string
	SiteName        string
	SiteBaseURL     string
	LogLevel        string
	LogFormat       string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	ShutdownTimeout time.Duration
}

type rawConfig struct {
	Port            string        `long:"port" env:"PORT" default:"5000" description:"HTTP listen port"`
	ListenAddr      string        `long:"listen-addr" env:"LISTEN_ADDR" description:"Full listen address, overrides --port"`
	DatabaseURL     string        `long:"database-url" env:"DATABASE_URL" default:"newsdesk.db" description:"SQLite path or postgres:// connection URL"`
	SessionSecret   string        `long:"session-secret" env:"SESSION_SECRET" default:"newsdesk-dev-secret" description:"Cookie session signing key"`
	GinMode         string        `long:"gin-mode" env:"GIN_MODE" default:"release" description:"Gin mode (debug, release, test)"`
	UploadDir       string        `long:"upload-dir" env:"UPLOAD_DIR" default:"uploads/news" description:"Directory for uploaded article images"`
	MaxUploadSize   int64         `long:"max-upload-size" env:"MAX_UPLOAD_SIZE" default:"10485760" description:"Maximum image upload size in bytes"`
	AdminUsername   string        `long:"admin-username" env:"ADMIN_USERNAME" description:"Seed admin username"`
	AdminPassword   string        `long:"admin-password" env:"ADMIN_PASSWORD" description:"Seed admin password"`
	SiteName        string        `long:"site-name" env:"SITE_NAME" default:"Newsdesk" description:"Site name shown in page headers and the feed"`
	SiteBaseURL     string        `long:"site-base-url" env:"SITE_BASE_URL" default:"http://localhost:5000" description:"Public base URL used for feed links"`
	LogLevel        string        `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`
	LogFormat       string        `long:"log-format" env:"LOG_FORMAT" default:"json" description:"Log format (json, pretty)"`
	DBMaxOpenConns  int           `long:"db-max-open-conns" env:"DB_MAX_OPEN_CONNS" default:"10" description:"Database pool max open connections"`
	DBMaxIdleConns  int           `long:"db-max-idle-conns" env:"DB_MAX_IDLE_CONNS" default:"5" description:"Database pool max idle connections"`
	ShutdownTimeout time.Duration `long:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" default:"10s" description:"Graceful shutdown timeout"`
}

// DevSessionSecret is the built-in cookie signing key. It is public, so
// anyone can forge a session signed with it.
const DevSessionSecret = "newsdesk-dev-secret"

// uploadURLPath is fixed by the public URL layout.
const uploadURLPath = "/uploads/news"

// Load 读取 .env（若存在）、环境变量与命令行参数，并为缺失项提供默认值。
func Load(args []string) (AppConfig, error) {
	_ = godotenv.Load()
	return parse(args)
}

func parse(args []string) (AppConfig, error) {
	var raw rawConfig
	parser := flags.NewParser(&raw, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return AppConfig{}, ErrHelpRequested
		}
		return AppConfig{}, fmt.Errorf("parse configuration: %w", err)
	}

	port := strings.TrimSpace(raw.Port)
	if port == "" {
		port = "5000"
	}

	listenAddr := strings.TrimSpace(raw.ListenAddr)
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databaseURL := strings.TrimSpace(raw.DatabaseURL)
	if databaseURL == "" {
		databaseURL = "newsdesk.db"
	}

	uploadDir := strings.TrimSpace(raw.UploadDir)
	if uploadDir == "" {
		uploadDir = "uploads/news"
	}

	maxUpload := raw.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	return AppConfig{
		ListenAddr:      listenAddr,
		Port:            port,
		DatabaseURL:     databaseURL,
		SessionSecret:   strings.TrimSpace(raw.SessionSecret),
		GinMode:         strings.TrimSpace(raw.GinMode),
		UploadDir:       uploadDir,
		UploadURLPath:   uploadURLPath,
		MaxUploadSize:   maxUpload,
		AdminUsername:   strings.TrimSpace(raw.AdminUsername),
		AdminPassword:   raw.AdminPassword,
		SiteName:        strings.TrimSpace(raw.SiteName),
		SiteBaseURL:     strings.TrimRight(strings.TrimSpace(raw.SiteBaseURL), "/"),
		LogLevel:        strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		LogFormat:       strings.ToLower(strings.TrimSpace(raw.LogFormat)),
		DBMaxOpenConns:  raw.DBMaxOpenConns,
		DBMaxIdleConns:  raw.DBMaxIdleConns,
		ShutdownTimeout: raw.ShutdownTimeout,
	}, nil
}
