package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	FileService *FileService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	fileService := InitFileService(channel)
	if fileService == nil {
		panic("Failed to initialize File produce service")
	}

	produceInstance = &Produce{
		FileService: fileService,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}
