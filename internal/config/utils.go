package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envReader reads typed environment values and collects malformed ones, so
// a typo in HTTP_PORT fails startup instead of silently using the default.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (r *envReader) invalid(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
}

func (r *envReader) str(key, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return def
}

func (r *envReader) int(key string, def int) int {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		r.invalid(key, value, err)
		return def
	}
	return v
}

func (r *envReader) bool(key string, def bool) bool {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		r.invalid(key, value, err)
		return def
	}
	return v
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.invalid(key, value, err)
		return def
	}
	return d
}

// list splits a comma separated value, dropping empty items.
func (r *envReader) list(key string, def []string) []string {
	value, ok := r.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
