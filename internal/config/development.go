package config

import "os"

func enabled(name string) bool {
	value, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	return value != "0" && value != ""
}

func Development() bool {
	return enabled("DEVELOPMENT")
}
