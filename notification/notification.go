package notification

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Mailer 寄送通知信，付款流程以盡力而為的方式呼叫，失敗不影響訂單狀態
type Mailer interface {
	Send(to string, subject string, body string) error
	Close() error
}

type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// LogMailer 沒有設定Kafka時的替代實作，只輸出Log
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(to string, subject string, body string) error {
	log.Printf("通知信(未設定Kafka僅記錄) 收件人: %s 主旨: %s", to, subject)
	return nil
}

func (m *LogMailer) Close() error {
	return nil
}

// KafkaMailer 將通知信以JSON發佈至Kafka topic，由下游服務實際寄送
type KafkaMailer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaMailer(brokers []string, topic string) (*KafkaMailer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	log.Println("成功連接Kafka producer")
	return &KafkaMailer{producer: producer, topic: topic}, nil
}

func (m *KafkaMailer) Send(to string, subject string, body string) error {
	payload, err := json.Marshal(Mail{
		To:      to,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: m.topic,
		Key:   sarama.StringEncoder(to),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := m.producer.SendMessage(msg)
	if err != nil {
		log.Printf("發佈通知信至Kafka失敗: %v", err)
		return err
	}
	log.Printf("通知信已發佈至topic %s partition %d offset %d", m.topic, partition, offset)
	return nil
}

func (m *KafkaMailer) Close() error {
	return m.producer.Close()
}
