package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestNewProducerAppliesOptions(t *testing.T) {
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("zstd"), WithAsync(true))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, kafka.Zstd, p.writer.Compression)
	assert.True(t, p.writer.Async)
	assert.IsType(t, &kafka.Hash{}, p.writer.Balancer)
}

func TestParseCompressionFallsBackToSnappy(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("brotli"))
	assert.Equal(t, kafka.Gzip, parseCompression("gzip"))
}
