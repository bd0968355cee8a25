package config

const (
	// EnvPrefix is handed to envconfig; every field carries an explicit key.
	EnvPrefix = "MEDIASHARE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	DefaultSQLiteDSN      = "file:mediashare.db?_foreign_keys=off"
	DefaultMaxUploadBytes = 50 << 20
)

const (
	EnvAppEnv    = "MEDIASHARE_APP_ENV"
	EnvPort      = "MEDIASHARE_APP_PORT"
	EnvDBDSN     = "MEDIASHARE_DB_DSN"
	EnvDBHost    = "MEDIASHARE_DB_HOST"
	EnvDBUser    = "MEDIASHARE_DB_USER"
	EnvDBName    = "MEDIASHARE_DB_NAME"
	EnvUseSQLite = "MEDIASHARE_USE_SQLITE"
	EnvRedisURL  = "MEDIASHARE_REDIS_URL"
	EnvJWTSecret = "MEDIASHARE_JWT_SECRET"
	EnvJWTIssuer = "MEDIASHARE_JWT_ISSUER"
	EnvJWTExpMin = "MEDIASHARE_JWT_EXPIRATION_MINUTES"
	EnvUploadDir = "MEDIASHARE_UPLOAD_DIR"
	EnvMaxUpload = "MEDIASHARE_MAX_UPLOAD_MB"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
