package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/doccoon/internal/flagx"
)

// serverFlags lists the flags owned by this package; anything else on the
// command line belongs to the calling binary.
var serverFlags = []string{"-a", "-d", "-s", "-t", "-r", "-x", "-i", "-k", "-u", "-p", "-b", "-g", "-e", "-l"}

// parseFlags overlays command-line flags onto config:
//
//	-a  HTTP bind address
//	-d  PostgreSQL DSN
//	-s  JWT and vault root secret
//	-t  access token validity, minutes
//	-r  refresh token validity, minutes
//	-x  KDF salt phrase
//	-i  KDF iterations
//	-k  server Gemini API key
//	-u -p -b -g -e  S3 user, password, bucket, region, endpoint
//	-l  log level
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (minutes)")

	fs.StringVar(&config.KDFSalt, "x", config.KDFSalt, "key derivation salt phrase")
	fs.IntVar(&config.KDFIterations, "i", config.KDFIterations, "key derivation iterations")
	fs.StringVar(&config.GeminiAPIKey, "k", config.GeminiAPIKey, "server Gemini API key")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for share archives (empty disables)")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
		}
	})
}
