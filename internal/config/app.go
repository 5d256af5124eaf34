package config

import (
	"os"
	"strings"
)

func BasePath() string {
	return strings.TrimSuffix(os.Getenv("APP_BASE_PATH"), "/")
}

// Port is the listen address, ":8080" unless APP_PORT says otherwise. A bare
// port number is accepted.
func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return ":8080"
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

// AutoChord enables chording around numbers touched by a newly placed flag.
func AutoChord() bool {
	return enabled("AUTO_CHORD")
}

// RegionsPath points to a catalog file replacing the bundled one.
func RegionsPath() (string, bool) {
	path, ok := os.LookupEnv("REGIONS_PATH")
	return path, ok && path != ""
}
