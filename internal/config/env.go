package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Env is the service configuration read from .env and the process environment.
type Env struct {
	Addr              string
	TokenKey          string
	AdminLogin        string
	AdminPasswordHash string
	DatabaseURL       string
	FluidSource       string
	ConstantsFile     string
	LogLevel          string
	LogFormat         string
	TLSCert           string
	TLSKey            string
}

// LoadEnv reads the given dotenv files, if present, then the environment.
// Values already set in the environment win.
func LoadEnv(files ...string) Env {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			logrus.WithField("file", f).Debug("dotenv file not loaded")
		}
	}
	return Env{
		Addr:              getenv("ADDR", ":8080"),
		TokenKey:          os.Getenv("TOKEN_KEY"),
		AdminLogin:        getenv("ADMIN_LOGIN", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		FluidSource:       getenv("FLUID_SOURCE", "table"),
		ConstantsFile:     getenv("CONSTANTS_FILE", "conf/exchanger.ini"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "text"),
		TLSCert:           os.Getenv("TLS_CERT"),
		TLSKey:            os.Getenv("TLS_KEY"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ConfigureLogger applies the level and format to the standard logrus logger.
func (e Env) ConfigureLogger() {
	ConfigureLogger(logrus.StandardLogger(), e.LogLevel, e.LogFormat)
}

func ConfigureLogger(log *logrus.Logger, level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
