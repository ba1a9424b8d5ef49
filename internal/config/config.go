package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the resolver service.
// Values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Matching MatchingConfig `mapstructure:"matching"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// MatchingConfig carries the resolution thresholds. These are product-tunable
// business rules, not algorithmic constants: routing behavior must change via
// this config, never via edits to the matching logic.
type MatchingConfig struct {
	// ExactThreshold and above routes to an existing outcome without user
	// confirmation. Exact-channel hits always land here.
	ExactThreshold float64 `mapstructure:"exact_threshold"`
	// SimilarThreshold up to ExactThreshold routes to similar_found, which
	// requires explicit user confirmation.
	SimilarThreshold float64 `mapstructure:"similar_threshold"`
	// FuzzyInclusionThreshold is the minimum fuzzy-channel similarity for a
	// record to enter the candidate list at all.
	FuzzyInclusionThreshold float64 `mapstructure:"fuzzy_inclusion_threshold"`
	// PhoneticBaseSimilarity is assigned to phonetic-bucket members not
	// re-scored higher by the fuzzy channel.
	PhoneticBaseSimilarity float64 `mapstructure:"phonetic_base_similarity"`
	// ClassifierConfidenceThreshold decides created vs needs_review for a
	// brand-new name.
	ClassifierConfidenceThreshold float64 `mapstructure:"classifier_confidence_threshold"`

	// MaxCandidates caps the ranked list returned by the retriever.
	MaxCandidates int `mapstructure:"max_candidates"`
	// SemanticNeighbors is k for the external embedding index query.
	SemanticNeighbors int `mapstructure:"semantic_neighbors"`
	// SemanticTimeout bounds the external embedding lookup; on expiry the
	// retriever proceeds with the channels it already has.
	SemanticTimeout time.Duration `mapstructure:"semantic_timeout"`
	// RecentPoolSize is how many most-used records the fuzzy channel scans
	// in addition to the phonetic bucket.
	RecentPoolSize int `mapstructure:"recent_pool_size"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"` // "dev" or "prod"
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	// Nested keys map to env vars: matching.semantic_timeout -> MATCHING_SEMANTIC_TIMEOUT
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "exercise_catalog")
	viper.SetDefault("log.mode", "dev")
	for key, value := range matchingDefaults() {
		viper.SetDefault(key, value)
	}

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No config file: run entirely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

func matchingDefaults() map[string]any {
	return map[string]any{
		"matching.exact_threshold":                 0.98,
		"matching.similar_threshold":               0.85,
		"matching.fuzzy_inclusion_threshold":       0.70,
		"matching.phonetic_base_similarity":        0.60,
		"matching.classifier_confidence_threshold": 0.80,
		"matching.max_candidates":                  10,
		"matching.semantic_neighbors":              5,
		"matching.semantic_timeout":                "250ms",
		"matching.recent_pool_size":                50,
	}
}

// DefaultMatching returns the default matching thresholds without going
// through Viper. Used by tests and by callers embedding the engine as a
// library.
func DefaultMatching() MatchingConfig {
	return MatchingConfig{
		ExactThreshold:                0.98,
		SimilarThreshold:              0.85,
		FuzzyInclusionThreshold:       0.70,
		PhoneticBaseSimilarity:        0.60,
		ClassifierConfidenceThreshold: 0.80,
		MaxCandidates:                 10,
		SemanticNeighbors:             5,
		SemanticTimeout:               250 * time.Millisecond,
		RecentPoolSize:                50,
	}
}
