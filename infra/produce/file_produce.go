package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	FileExchange        = "file.exchange"
	FilePurgeQueue      = "file.purge"
	FilePurgeRoutingKey = "file.purge"
)

// FilePurgeMessage tells the purge worker that a metadata record is gone
// and the object it referenced can be removed from storage.
type FilePurgeMessage struct {
	FileID     string `json:"file_id"`
	ObjectKey  string `json:"object_key"`
	UploadedBy string `json:"uploaded_by"`
	Timestamp  int64  `json:"timestamp"`
}

type FileService struct {
	channel *amqp.Channel
}

func InitFileService(channel *amqp.Channel) *FileService {
	service := &FileService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		FileExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare File exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		FilePurgeQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare File purge queue: " + err.Error())
	}

	err = channel.QueueBind(
		FilePurgeQueue,
		FilePurgeRoutingKey,
		FileExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind File purge queue: " + err.Error())
	}

	return service
}

func (s *FileService) PublishFilePurge(ctx context.Context, fileID, objectKey, uploadedBy string) error {
	message := FilePurgeMessage{
		FileID:     fileID,
		ObjectKey:  objectKey,
		UploadedBy: uploadedBy,
		Timestamp:  time.Now().Unix(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		FileExchange,
		FilePurgeRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
