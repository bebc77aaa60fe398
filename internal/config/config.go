// Package config assembles runtime settings from defaults, the TOML config
// file and environment variables, in that order of precedence (later wins).
// A .env file in the working directory is loaded before the environment is
// read, so local overrides need no shell setup.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/quarry-labs/quarry-cli/internal/chunker"
	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// ChunkingSettings tunes the chunker.
type ChunkingSettings struct {
	MaxTokens int
	Overlap   int
}

// RetrievalSettings tunes ranking.
type RetrievalSettings struct {
	TopK          int
	LexicalWeight float64
	RecencyWeight float64
	IDFWeighting  bool
}

// GitSettings tunes commit ingestion.
type GitSettings struct {
	MaxCommits int

	// TargetAuthorName/Email restrict ingestion to one author's commits.
	// Empty means all authors.
	TargetAuthorName  string
	TargetAuthorEmail string
}

// Settings holds the resolved runtime configuration.
type Settings struct {
	DBPath    string
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Git       GitSettings
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			MaxTokens: chunker.DefaultMaxTokens,
			Overlap:   chunker.DefaultOverlapTokens,
		},
		Retrieval: RetrievalSettings{
			TopK:          domain.DefaultTopK,
			LexicalWeight: domain.DefaultLexicalWeight,
			RecencyWeight: domain.DefaultRecencyWeight,
			IDFWeighting:  true,
		},
		Git: GitSettings{
			MaxCommits: 200,
		},
	}
}

// Load resolves settings: defaults, then the config store, then environment
// variables. The store may be nil (defaults and env only).
func Load(store driven.ConfigStore) Settings {
	// Best effort; missing .env is the common case.
	_ = godotenv.Load()

	s := Defaults()

	if store != nil {
		if v := store.GetString("db.path"); v != "" {
			s.DBPath = v
		}
		if v := store.GetInt("chunking.max_tokens"); v > 0 {
			s.Chunking.MaxTokens = v
		}
		if _, ok := store.Get("chunking.overlap"); ok {
			s.Chunking.Overlap = store.GetInt("chunking.overlap")
		}
		if v := store.GetInt("retrieval.top_k"); v > 0 {
			s.Retrieval.TopK = v
		}
		if v := store.GetFloat("retrieval.lexical_weight"); v > 0 {
			s.Retrieval.LexicalWeight = v
		}
		// Zero is meaningful here: it disables the recency component.
		if _, ok := store.Get("retrieval.recency_weight"); ok {
			s.Retrieval.RecencyWeight = store.GetFloat("retrieval.recency_weight")
		}
		if _, ok := store.Get("retrieval.idf_weighting"); ok {
			s.Retrieval.IDFWeighting = store.GetBool("retrieval.idf_weighting")
		}
		if v := store.GetInt("git.max_commits"); v > 0 {
			s.Git.MaxCommits = v
		}
		if v := store.GetString("git.target_author_name"); v != "" {
			s.Git.TargetAuthorName = v
		}
		if v := store.GetString("git.target_author_email"); v != "" {
			s.Git.TargetAuthorEmail = v
		}
	}

	s.DBPath = getEnv("QUARRY_DB_PATH", s.DBPath)
	s.Chunking.MaxTokens = getEnvAsInt("QUARRY_CHUNK_MAX_TOKENS", s.Chunking.MaxTokens)
	s.Chunking.Overlap = getEnvAsInt("QUARRY_CHUNK_OVERLAP", s.Chunking.Overlap)
	s.Retrieval.TopK = getEnvAsInt("QUARRY_TOP_K", s.Retrieval.TopK)
	s.Retrieval.LexicalWeight = getEnvAsFloat("QUARRY_LEXICAL_WEIGHT", s.Retrieval.LexicalWeight)
	s.Retrieval.RecencyWeight = getEnvAsFloat("QUARRY_RECENCY_WEIGHT", s.Retrieval.RecencyWeight)
	s.Retrieval.IDFWeighting = getEnvAsBool("QUARRY_IDF_WEIGHTING", s.Retrieval.IDFWeighting)
	s.Git.MaxCommits = getEnvAsInt("QUARRY_GIT_MAX_COMMITS", s.Git.MaxCommits)
	s.Git.TargetAuthorName = getEnv("QUARRY_TARGET_AUTHOR_NAME", s.Git.TargetAuthorName)
	s.Git.TargetAuthorEmail = getEnv("QUARRY_TARGET_AUTHOR_EMAIL", s.Git.TargetAuthorEmail)

	return s
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
