package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-base-url public base URL of the site
//	-d database DSN
//	-db-driver database driver (postgres|sqlite)
//	-c/-config json file path with configs
//	-token-hash-key token hash key
//	-state-sign-key OAuth state signing key
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-avatar-dir local avatar directory
//	-rate-limit-backend limiter backend (memory|redis)
//	-redis-addr redis address host:port
//	-gc-interval expired token sweep interval (e.g., "1h")
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var baseURL string
	var databaseDSN, databaseDriver string
	var jsonConfigPath string
	var tokenHashKey, stateSignKey string
	var requestTimeout time.Duration
	var avatarDir string
	var rateLimitBackend, redisAddr string
	var gcInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&baseURL, "base-url", "", "Public base URL")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&databaseDriver, "db-driver", "", "Database driver (postgres|sqlite)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenHashKey, "token-hash-key", "", "Token hash key")
	flag.StringVar(&stateSignKey, "state-sign-key", "", "OAuth state signing key")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&avatarDir, "avatar-dir", "", "Local avatar directory")
	flag.StringVar(&rateLimitBackend, "rate-limit-backend", "", "Rate limiter backend (memory|redis)")
	flag.StringVar(&redisAddr, "redis-addr", "", "Redis address host:port")
	flag.DurationVar(&gcInterval, "gc-interval", 0, "Expired token sweep interval (e.g., 1h)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			BaseURL: baseURL,
		},
		Auth: Auth{
			TokenHashKey: tokenHashKey,
			StateSignKey: stateSignKey,
		},
		Storage: Storage{
			DB: DB{
				Driver: databaseDriver,
				DSN:    databaseDSN,
			},
			Avatars: Avatars{
				Dir: avatarDir,
			},
		},
		RateLimit: RateLimit{
			Backend: rateLimitBackend,
			Redis:   Redis{Addr: redisAddr},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			GCInterval: gcInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number is a positive integer up to 65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
