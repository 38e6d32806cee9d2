package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// RelayConfig holds configuration for the outbox relay service.
// This is a minimal config that only includes what the relay needs.
type RelayConfig struct {
	MongoURI          string
	MongoDatabase     string
	RabbitMQURL       string
	DonationQueueName string
}

func LoadRelayConfig() *RelayConfig {
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

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	queueName := os.Getenv("DONATION_QUEUE_NAME")
	if queueName == "" {
		queueName = "donation-events"
	}

	return &RelayConfig{
		MongoURI:          mongoURI,
		MongoDatabase:     mongoDB,
		RabbitMQURL:       rabbitURL,
		DonationQueueName: queueName,
	}
}
