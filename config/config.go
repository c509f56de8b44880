package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	RootDir     string
	Arena       string
	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	MongoURI   string

	JWTSecret   string
	RandomSeed  uint32
	DumpPackets bool
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		RootDir:     getEnv("ROOT_DIR", "."),
		Arena:       getEnv("ARENA", "svs"),
		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "user"),
		DBPassword:  getEnv("DB_PASSWORD", "password"),
		DBName:      getEnv("DB_NAME", "dbname"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		RandomSeed:  getEnvUint32("RANDOM_SEED", uint32(time.Now().UnixMilli())),
		DumpPackets: getEnvBool("DUMP_PACKETS", false),
	}
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
		log.Printf("Environment variable %s not set, using default value: %s", key, defaultValue)
	}
	return value
}

func getEnvUint32(key string, defaultValue uint32) uint32 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		log.Printf("Environment variable %s is not a 32-bit integer, using default value: %d", key, defaultValue)
		return defaultValue
	}
	return uint32(parsed)
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Environment variable %s is not a boolean, using default value: %v", key, defaultValue)
		return defaultValue
	}
	return parsed
}
