package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Root           string
	Port           string
	MaxDepth       int
	FollowSymlinks bool
	SkipDirs       []string
	CacheSize      int
	Debug          bool
	S3             S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Load reads an optional .env file, then the LSTREE_* environment, then
// falls back to defaults. Flags are applied by the caller on top.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, err
	}

	maxDepth, err := intEnv("LSTREE_MAX_DEPTH", 0)
	if err != nil {
		return nil, err
	}
	cacheSize, err := intEnv("LSTREE_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	return &Config{
		Root:           firstNonEmpty(strings.TrimSpace(os.Getenv("LSTREE_ROOT")), "."),
		Port:           strings.TrimPrefix(firstNonEmpty(strings.TrimSpace(os.Getenv("LSTREE_PORT")), "8080"), ":"),
		MaxDepth:       maxDepth,
		FollowSymlinks: boolEnv("LSTREE_FOLLOW_SYMLINKS", true),
		SkipDirs:       SplitList(os.Getenv("LSTREE_SKIP_DIRS")),
		CacheSize:      cacheSize,
		Debug:          boolEnv("LSTREE_DEBUG", false),
		S3:             loadS3Config(),
	}, nil
}

func loadS3Config() S3Config {
	return S3Config{
		Endpoint:  strings.TrimSpace(os.Getenv("LSTREE_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("LSTREE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("LSTREE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("LSTREE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		UseSSL:    boolEnv("LSTREE_S3_USE_SSL", true),
	}
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &InvalidValueError{Key: key, Value: raw, Err: err}
	}
	if v < 0 {
		return 0, &InvalidValueError{Key: key, Value: raw, Err: strconv.ErrRange}
	}
	return v, nil
}

func boolEnv(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// InvalidValueError reports an environment value that failed to parse.
type InvalidValueError struct {
	Key   string
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	return "config: invalid " + e.Key + "=" + strconv.Quote(e.Value) + ": " + e.Err.Error()
}

func (e *InvalidValueError) Unwrap() error { return e.Err }
