package service

import (
	"os"
	"strings"
)

// Getenv returns the value of the environment variable or def if it is not set
func Getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// SplitList splits a comma-separated list, ignoring empty elements
func SplitList(s string) []string {
	var l []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			l = append(l, e)
		}
	}
	return l
}
