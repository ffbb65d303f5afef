package config

import "os"

func IsDebug() bool {
	return os.Getenv("MOTORBOT_DEBUG") == "1"
}
