package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_DeliversInOrder(t *testing.T) {
	sender, receiver := NewChannel()
	require.True(t, sender.OnSamples([]float32{1, 2}))
	require.True(t, sender.OnSamples([]float32{3, 4}))
	sender.Close()

	chunk, err := receiver.Recv()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, chunk)

	chunk, err = receiver.Recv()
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, chunk)

	_, err = receiver.Recv()
	assert.Error(t, err)
}

func TestOnSamples_ClonesInput(t *testing.T) {
	sender, receiver := NewChannel()
	buf := []float32{1, 2, 3}
	require.True(t, sender.OnSamples(buf))
	buf[0] = 99

	chunk, err := receiver.Recv()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, chunk)
}

// TestReceiverClose_UnblocksFullChannel reproduces the producer-side
// deadlock a dropped consumer used to cause: once the channel is full and
// nobody is calling Recv, a pending OnSamples must still return promptly
// once the consumer calls Close, rather than block forever.
func TestReceiverClose_UnblocksFullChannel(t *testing.T) {
	sender, receiver := NewChannel()
	for i := 0; i < Capacity; i++ {
		require.True(t, sender.OnSamples([]float32{float32(i)}))
	}

	blocked := make(chan bool, 1)
	go func() {
		blocked <- sender.OnSamples([]float32{1})
	}()

	select {
	case <-blocked:
		t.Fatal("OnSamples returned before the channel filled and Close was called")
	case <-time.After(20 * time.Millisecond):
	}

	receiver.Close()

	select {
	case sent := <-blocked:
		assert.False(t, sent)
	case <-time.After(time.Second):
		t.Fatal("OnSamples still blocked after receiver.Close()")
	}
}

func TestReceiverClose_IsIdempotent(t *testing.T) {
	_, receiver := NewChannel()
	receiver.Close()
	assert.NotPanics(t, receiver.Close)
}

func TestReceiverClose_FutureSendsFail(t *testing.T) {
	sender, receiver := NewChannel()
	receiver.Close()
	assert.False(t, sender.OnSamples([]float32{1}))
}
