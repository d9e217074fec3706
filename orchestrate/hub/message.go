package hub

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/contract-review/core/contract"
)

// Topic classifies a run output.
type Topic string

const (
	TopicRisk       Topic = "risk"
	TopicEvaluation Topic = "evaluation"
	TopicDecision   Topic = "decision"
	TopicOutput     Topic = "output"
)

// TopicOf returns the topic for an emitted value.
func TopicOf(value any) Topic {
	switch value.(type) {
	case contract.RiskAssessment:
		return TopicRisk
	case contract.EvaluationResult:
		return TopicEvaluation
	case contract.FinalDecision:
		return TopicDecision
	default:
		return TopicOutput
	}
}

// Message is one delivered output.
type Message struct {
	ID        string    `json:"id"`
	Hub       string    `json:"hub"`
	Topic     Topic     `json:"topic"`
	Sequence  int64     `json:"sequence"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func newMessage(hubName string, seq int64, data any) *Message {
	return &Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Hub:       hubName,
		Topic:     TopicOf(data),
		Sequence:  seq,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (msg *Message) String() string {
	return fmt.Sprintf("Message{ID: %s, Topic: %s, Sequence: %d, Data: %T}", msg.ID, msg.Topic, msg.Sequence, msg.Data)
}
