package config

import "time"

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"newday-graph-api"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// PostgreSQL
	DatabaseDriver              string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"newday_graph"`
	DatabaseSSLMode             string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce      int           `env:"DB_MIGRATION_FORCE" env-default:"0"`

	// Graph Database (Memgraph mirror)
	GraphDBEnabled  bool   `env:"GRAPH_DB_ENABLED" env-default:"false"`
	GraphDBHost     string `env:"GRAPH_DB_HOST" env-default:"localhost"`
	GraphDBPort     int    `env:"GRAPH_DB_PORT" env-default:"7687"`
	GraphDBUser     string `env:"GRAPH_DB_USER" env-default:""`
	GraphDBPassword string `env:"GRAPH_DB_PASSWORD" env-default:""`

	// Kafka Producer settings
	KafkaEnabled      bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic  string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"relationship-events"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Path search
	PathMaxDepth       int `env:"PATH_MAX_DEPTH" env-default:"4"`
	PathMaxResults     int `env:"PATH_MAX_RESULTS" env-default:"20"`
	ReachabilityLimit  int `env:"REACHABILITY_DEGREE_LIMIT" env-default:"6"`

	// Analytics
	AnalyticsStaleAfter time.Duration `env:"ANALYTICS_STALE_AFTER" env-default:"24h"`

	// Influence score weights
	InfluenceDirectWeight    float64 `env:"INFLUENCE_DIRECT_WEIGHT" env-default:"0.4"`
	InfluenceReachWeight     float64 `env:"INFLUENCE_REACH_WEIGHT" env-default:"0.2"`
	InfluenceStrengthWeight  float64 `env:"INFLUENCE_STRENGTH_WEIGHT" env-default:"0.2"`
	InfluenceBetweenWeight   float64 `env:"INFLUENCE_BETWEEN_WEIGHT" env-default:"0.1"`
	InfluenceDiversityWeight float64 `env:"INFLUENCE_DIVERSITY_WEIGHT" env-default:"0.1"`
	InfluenceScoreDivisor    float64 `env:"INFLUENCE_SCORE_DIVISOR" env-default:"10"`

	// Diversity normalization caps
	DiversityCompanyCap  int `env:"DIVERSITY_COMPANY_CAP" env-default:"10"`
	DiversityTierCap     int `env:"DIVERSITY_TIER_CAP" env-default:"15"`
	DiversityLocationCap int `env:"DIVERSITY_LOCATION_CAP" env-default:"20"`

	// Discovery
	DiscoveryTopCandidates      int     `env:"DISCOVERY_TOP_CANDIDATES" env-default:"10"`
	DiscoveryMinConfidence      float64 `env:"DISCOVERY_MIN_CONFIDENCE" env-default:"0.5"`
	DiscoveryHighConfidence     float64 `env:"DISCOVERY_HIGH_CONFIDENCE" env-default:"0.7"`
	DiscoveryApproveMaxStrength float64 `env:"DISCOVERY_APPROVE_MAX_STRENGTH" env-default:"0.8"`
	DiscoveryWorkerCount        int     `env:"DISCOVERY_WORKER_COUNT" env-default:"4"`
}
