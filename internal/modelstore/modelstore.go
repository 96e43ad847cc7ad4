// Package modelstore persists serialized models in a directory or in Redis.
package modelstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/happyhackingspace/parallign/align"
)

// ErrNotFound is returned by Get when no model is stored under the name.
var ErrNotFound = errors.New("model not found")

// Store keeps serialized models by name.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// ValidateName rejects names that are empty or could escape a directory.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid model name %q", name)
	}
	return nil
}

// Open returns the store of the given kind: "file" uses location as the
// directory, "redis" reads connection settings from the environment with
// location, if set, overriding the address.
func Open(kind, location string) (Store, error) {
	switch kind {
	case "", "file":
		if location == "" {
			location = "."
		}
		return NewFileStore(location), nil
	case "redis":
		opts := RedisOptionsFromEnv()
		if location != "" {
			opts.Addr = location
		}
		return NewRedisStore(redis.NewClient(opts)), nil
	}
	return nil, fmt.Errorf("unknown store %q (available: file, redis)", kind)
}

// RedisOptionsFromEnv builds client options from PARALLIGN_REDIS_ADDR,
// PARALLIGN_REDIS_PASSWORD and PARALLIGN_REDIS_DB.
func RedisOptionsFromEnv() *redis.Options {
	return &redis.Options{
		Addr:     getenv("PARALLIGN_REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("PARALLIGN_REDIS_PASSWORD"),
		DB:       getEnvInt("PARALLIGN_REDIS_DB", 0),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

// SaveModel serializes model into store under name.
func SaveModel(ctx context.Context, store Store, name string, model *align.Model) error {
	data, err := model.Serialize()
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// LoadModel reads and deserializes the model stored under name.
func LoadModel(ctx context.Context, store Store, name string) (*align.Model, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	model, err := align.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	return model, nil
}
