//go:build integration

package publisher_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"abhaya/internal/platform/config"
	"abhaya/internal/platform/kafka"
	"abhaya/internal/sos/lifecycle"
	"abhaya/internal/sos/publisher"
	id "abhaya/pkg/domain"
	"abhaya/pkg/testutil/containers"
)

func TestKafkaNotifierAgainstRedpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "abhaya.sos.test." + id.NewAlertID().String()
	client, err := kafka.New(config.KafkaConfig{Brokers: []string{broker.SeedBroker}, SOSTopic: topic})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, kafka.EnsureTopic(ctx, client, topic, 1, 1))
	require.NoError(t, kafka.EnsureTopic(ctx, client, topic, 1, 1), "ensure is idempotent")

	a := lifecycle.New(id.NewAlertID(), id.NewSessionID(), time.Now().UTC())
	require.True(t, a.SilentDispatch(time.Now().UTC()))
	ev := publisher.EventFromAlert(a)
	require.NoError(t, publisher.NewKafkaNotifier(client, topic).Notify(ctx, ev))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.SeedBroker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, ev.AlertID, string(records[0].Key))

	var got publisher.DispatchEvent
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, ev.Code, got.Code)
}
