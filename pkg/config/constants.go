package config

const (
	// EnvPrefix is the envconfig namespace for every variable.
	EnvPrefix = "cetus"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvDBDSN  = "CETUS_DB_DSN"
	EnvDBHost = "CETUS_DB_HOST"
	EnvDBUser = "CETUS_DB_USER"
	EnvDBName = "CETUS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
