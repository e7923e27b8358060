package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultDataSource = "sqlite"
	DefaultSQLitePath = "db/sample.db"
	DefaultKPIPath    = "metrics/kpis.yaml"

	DefaultHistoryTurns = 10
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}
