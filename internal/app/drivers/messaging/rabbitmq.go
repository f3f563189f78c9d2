package messaging

import (
	"fmt"
	"labtrace-service/internal/app/config"
	"log"

	"github.com/rabbitmq/amqp091-go"
)

func NewRabbitMQ(driverConfig *config.DriverConfig) *amqp091.Connection {
	url := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		driverConfig.RabbitMQ.Username,
		driverConfig.RabbitMQ.Password,
		driverConfig.RabbitMQ.Host,
		driverConfig.RabbitMQ.Port,
	)

	connection, err := amqp091.Dial(url)
	if err != nil {
		log.Fatalf("Failed to connect to rabbitmq: %s", err.Error())
	}

	log.Println("Successfully connected to rabbitmq")

	return connection
}
