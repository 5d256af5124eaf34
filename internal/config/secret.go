package config

import (
	"fmt"
	"os"
	"strings"
)

// secret reads name from the environment, falling back to the file named
// by name_FILE.
func secret(name string) (string, error) {
	value, ok := os.LookupEnv(name)
	if ok {
		return value, nil
	}

	path, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return "", fmt.Errorf("no %s or %s_FILE env variable set", name, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read from %s: %w", name+"_FILE", err)
	}

	return strings.TrimSpace(string(data)), nil
}
