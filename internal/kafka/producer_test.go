package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	assert.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestPublish_MarshalError(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	defer p.Close()

	err := p.Publish(context.Background(), "tickets", "1", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal payload")
}

func TestCheckConnection_NoBrokers(t *testing.T) {
	p := NewProducer(nil)
	assert.Error(t, p.CheckConnection(context.Background()))
}

func TestNewProducer_SingleAttempt(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	defer p.Close()

	assert.Equal(t, 1, p.writer.MaxAttempts)
}
