package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Storage       StorageConfig
	Media         MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"MEDIASHARE_APP_ENV" required:"true"`
	Port         string   `envconfig:"MEDIASHARE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"MEDIASHARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MEDIASHARE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"MEDIASHARE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEDIASHARE_DB_DSN"`
	Driver string `envconfig:"MEDIASHARE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDIASHARE_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDIASHARE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDIASHARE_DB_USER"`
	LegacyPassword string `envconfig:"MEDIASHARE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDIASHARE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDIASHARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEDIASHARE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDIASHARE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDIASHARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDIASHARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	ConnectRetries  int           `envconfig:"MEDIASHARE_DB_CONNECT_RETRIES" default:"5"`
	ConnectBackoff  time.Duration `envconfig:"MEDIASHARE_DB_CONNECT_BACKOFF" default:"500ms"`
	ConnectMaxDelay time.Duration `envconfig:"MEDIASHARE_DB_CONNECT_MAX_DELAY" default:"10s"`
	PingTimeout     time.Duration `envconfig:"MEDIASHARE_DB_PING_TIMEOUT" default:"5s"`
	MonitorInterval time.Duration `envconfig:"MEDIASHARE_DB_MONITOR_INTERVAL" default:"15s"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

// RedisConfig is optional; an empty URL and address disables Redis-backed
// auth rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"MEDIASHARE_REDIS_URL"`
	Address      string        `envconfig:"MEDIASHARE_REDIS_ADDR"`
	Password     string        `envconfig:"MEDIASHARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDIASHARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDIASHARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDIASHARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDIASHARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDIASHARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDIASHARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDIASHARE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDIASHARE_JWT_ISSUER" default:"mediashare"`
	ExpirationMinutes int    `envconfig:"MEDIASHARE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEDIASHARE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEDIASHARE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEDIASHARE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEDIASHARE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEDIASHARE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"MEDIASHARE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"MEDIASHARE_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"MEDIASHARE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"MEDIASHARE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"MEDIASHARE_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"MEDIASHARE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDIASHARE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDIASHARE_AUTO_MIGRATE" default:"false"`
}

type StorageConfig struct {
	UploadDir     string `envconfig:"MEDIASHARE_UPLOAD_DIR" default:"uploads"`
	PublicBaseURL string `envconfig:"MEDIASHARE_PUBLIC_BASE_URL" default:"http://localhost:5000"`
}

type MediaConfig struct {
	MaxUploadMB    int `envconfig:"MEDIASHARE_MAX_UPLOAD_MB" default:"50"`
	ThumbnailWidth int `envconfig:"MEDIASHARE_MEDIA_THUMBNAIL_WIDTH" default:"320"`
}

// MaxUploadBytes converts the configured megabyte cap into bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return DefaultMaxUploadBytes
	}
	return int64(m.MaxUploadMB) << 20
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
