// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main engine configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ElasticsearchConfig struct {
	Addresses         []string `mapstructure:"addresses"`
	Username          string   `mapstructure:"username"`
	Password          string   `mapstructure:"password"`
	ProfessionalIndex string   `mapstructure:"professional_index"`
	JobIndex          string   `mapstructure:"job_index"`
}

type AWSConfig struct {
	Region        string `mapstructure:"region"`
	SenderAddress string `mapstructure:"sender_address"`
	AuditTopicARN string `mapstructure:"audit_topic_arn"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// --- Engine Config ---

// EngineConfig holds everything the matching and workflow components take as
// externally supplied configuration instead of hardcoded constants.
type EngineConfig struct {
	Scoring            ScoringConfig `mapstructure:"scoring"`
	PresentationExpiry time.Duration `mapstructure:"presentation_expiry"`
	RegistryPath       string        `mapstructure:"registry_path"`
}

// ScoringWeights are the sub-score weights; they must sum to 1.
type ScoringWeights struct {
	Skills       float64 `mapstructure:"skills"`
	Credentials  float64 `mapstructure:"credentials"`
	Location     float64 `mapstructure:"location"`
	Availability float64 `mapstructure:"availability"`
	Compensation float64 `mapstructure:"compensation"`
}

// Sum returns the total weight mass.
func (w ScoringWeights) Sum() float64 {
	return w.Skills + w.Credentials + w.Location + w.Availability + w.Compensation
}

// ScoringConfig parameterizes the match scorer.
type ScoringConfig struct {
	Weights ScoringWeights `mapstructure:"weights"`
	// NeighboringStates maps a state code to the states considered adjacent
	// for the 0.5 location sub-score.
	NeighboringStates map[string][]string `mapstructure:"neighboring_states"`
	// AvailabilityUrgency maps availability tier -> urgency tier -> fit in
	// [0,1]. Every (tier, urgency) pair must be present.
	AvailabilityUrgency map[string]map[string]float64 `mapstructure:"availability_urgency"`
}
