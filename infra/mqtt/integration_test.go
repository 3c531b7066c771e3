package mqtt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
`

func startMosquitto(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(path, []byte(mosquittoConf), 0o644))
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// TestIntegration_PublishPlan publishes a plan through a real Mosquitto broker.
func TestIntegration_PublishPlan(t *testing.T) {
	if os.Getenv("POWERPLAN_E2E") == "" {
		t.Skip("set POWERPLAN_E2E=1 to run broker tests")
	}
	broker := startMosquitto(t)

	received := make(chan paho.Message, 8)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-sub"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe("e2e/#", 1, func(_ paho.Client, m paho.Message) { received <- m })
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	pub, err := NewPahoPublisher(Config{Enabled: true, Broker: broker, TopicPrefix: "e2e", QoS: 1})
	require.NoError(t, err)
	defer pub.Close()
	require.NoError(t, pub.PublishPlan(context.Background(), balancedEvent()))

	topics := map[string]bool{}
	timeout := time.After(5 * time.Second)
	for len(topics) < 4 {
		select {
		case m := <-received:
			topics[m.Topic()] = true
		case <-timeout:
			t.Fatalf("received only %v", topics)
		}
	}
	require.True(t, topics["e2e/plan"])
	require.True(t, topics["e2e/plant/gasfiredbig1/setpoint"])
	require.True(t, topics["e2e/plant/wind_park_1/setpoint"])
}
