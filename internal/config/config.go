package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	MongoURI       string
	MongoDatabase  string
	RedisAddress   string
	RedisPassword  string
	JWKSURL        string
	Audience       string
	AllowedOrigins []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		panic("MONGO_URI environment variable is required")
	}

	mongoDB := os.Getenv("MONGO_DATABASE")
	if mongoDB == "" {
		mongoDB = "bloodaid"
	}

	redisAddress := os.Getenv("REDIS_ADDRESS")
	if redisAddress == "" {
		panic("REDIS_ADDRESS environment variable is required")
	}

	jwksURL := os.Getenv("IDENTITY_JWKS_URL")
	if jwksURL == "" {
		panic("IDENTITY_JWKS_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	origins := []string{"*"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return &Config{
		Port:           port,
		MongoURI:       mongoURI,
		MongoDatabase:  mongoDB,
		RedisAddress:   redisAddress,
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		JWKSURL:        jwksURL,
		Audience:       os.Getenv("IDENTITY_AUDIENCE"),
		AllowedOrigins: origins,
	}
}
