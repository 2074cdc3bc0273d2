package source

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vitals-monitor/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (fakeToken) Error() error { return nil }

// fakeMQTTClient 统计 Unsubscribe/Disconnect 的调用次数
type fakeMQTTClient struct {
	unsubscribes int32
	disconnects  int32
}

func (f *fakeMQTTClient) IsConnected() bool      { return true }
func (f *fakeMQTTClient) IsConnectionOpen() bool { return true }
func (f *fakeMQTTClient) Connect() mqtt.Token    { return fakeToken{} }
func (f *fakeMQTTClient) Disconnect(quiesce uint) {
	atomic.AddInt32(&f.disconnects, 1)
}
func (f *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return fakeToken{}
}
func (f *fakeMQTTClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (f *fakeMQTTClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}
func (f *fakeMQTTClient) Unsubscribe(topics ...string) mqtt.Token {
	atomic.AddInt32(&f.unsubscribes, 1)
	return fakeToken{}
}
func (f *fakeMQTTClient) AddRoute(topic string, callback mqtt.MessageHandler) {}
func (f *fakeMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

func TestMQTTSource_ConcurrentStopDisconnectsOnce(t *testing.T) {
	// 控制器停源与 ctx 监听 goroutine 可能同时调用 Stop
	fake := &fakeMQTTClient{}
	src := NewMQTTSource(&config.MQTTConfig{Topic: "vitals/+/readings"}, zap.NewNop())
	src.client = fake

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.Stop()
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&fake.unsubscribes))
	require.Equal(t, int32(1), atomic.LoadInt32(&fake.disconnects))
}

func TestMQTTSource_StopWithoutStartIsNoop(t *testing.T) {
	src := NewMQTTSource(&config.MQTTConfig{}, zap.NewNop())
	src.Stop()
	src.Stop()
}

func TestDecodeBatch(t *testing.T) {
	batch, err := decodeBatch([]byte(`[{"heartRate":72},{"heartRate":74}]`))
	require.NoError(t, err)
	require.Len(t, batch, 2)

	single, err := decodeBatch([]byte(`{"heartRate":72}`))
	require.NoError(t, err)
	require.Len(t, single, 1)

	_, err = decodeBatch([]byte(`not json`))
	require.Error(t, err)
}
