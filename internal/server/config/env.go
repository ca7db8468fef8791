package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lanzath/authapi/internal/flagx"
)

// Environment variables read by parseEnv.
const (
	EnvHTTPAddr       = "AUTHAPI_HTTP_ADDR"
	EnvGRPCAddr       = "AUTHAPI_GRPC_ADDR"
	EnvStorage        = "AUTHAPI_STORAGE"
	EnvTokenStore     = "AUTHAPI_TOKEN_STORE"
	EnvDatabaseDSN    = "AUTHAPI_DATABASE_DSN"
	EnvRedisAddr      = "AUTHAPI_REDIS_ADDR"
	EnvSecretKey      = "AUTHAPI_SECRET_KEY"
	EnvAccessTokenTTL = "AUTHAPI_ACCESS_TOKEN_TTL"
	EnvStoreTimeout   = "AUTHAPI_STORE_TIMEOUT"
	EnvBcryptCost     = "AUTHAPI_BCRYPT_COST"
	EnvGinMode        = "AUTHAPI_GIN_MODE"
	EnvLogLevel       = "AUTHAPI_LOG_LEVEL"
)

// parseEnv overlays AUTHAPI_* environment variables onto config.
//
// A dotenv file given with -e/-env is loaded first and must exist; otherwise
// ./.env is loaded when present. Variables already set in the process
// environment win over the file. Durations use time.ParseDuration syntax
// ("24h", "500ms"). Malformed values panic, like the other stages.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	setString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	setString(&config.Storage, EnvStorage)
	setString(&config.TokenStore, EnvTokenStore)
	setString(&config.DatabaseDSN, EnvDatabaseDSN)
	setString(&config.RedisAddr, EnvRedisAddr)
	setString(&config.SecretKey, EnvSecretKey)
	setDuration(&config.AccessTokenValidityDuration, EnvAccessTokenTTL)
	setDuration(&config.StoreTimeout, EnvStoreTimeout)
	setInt(&config.BcryptCost, EnvBcryptCost)
	setString(&config.GinMode, EnvGinMode)
	setString(&config.LogLevel, EnvLogLevel)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}
