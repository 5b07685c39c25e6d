// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "refcheck/0.1"). Per prd002-resolution R5.1.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ResolveConfig holds settings for the metadata resolution stage.
// Per prd002-resolution R2.1-R2.4, R5.1-R5.4.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is the caller-identifying contact address sent with every
	// provider request (OpenAlex polite pool mailto, Crossref etiquette).
	// Required: resolution refuses to start without it (R5.2).
	Email string `json:"email" yaml:"email"`

	// CrossrefToken is an optional Crossref Metadata Plus token.
	CrossrefToken string `json:"crossref_token,omitempty" yaml:"crossref_token,omitempty"`

	// MaxCandidates is the number of title-search candidates requested
	// per provider (default 10, capped at 50).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// RateLimit is the maximum provider requests per second (default 5).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// Burst is the rate limiter burst size (default 5).
	Burst int `json:"burst" yaml:"burst"`
}

// VerifyConfig holds settings for the batch verification stage.
// Per prd004-verification R1.2, R4.1-R4.3.
type VerifyConfig struct {
	// Concurrency is the number of citations processed in parallel
	// (default 1; each citation's own pipeline stays sequential).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// StoreConfig holds settings for the run history store.
// Per prd005-history R1.1.
type StoreConfig struct {
	// Path is the SQLite database file (default "refcheck.db").
	Path string `json:"path" yaml:"path"`
}

// Config groups all stage configurations.
type Config struct {
	Resolve ResolveConfig `json:"resolve" yaml:"resolve"`
	Verify  VerifyConfig  `json:"verify" yaml:"verify"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
