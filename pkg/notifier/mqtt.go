package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"p2h.app/configs"
	"p2h.app/configs/configslog"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"go.uber.org/zap"
)

const publishQoS = 1

// MQTTNotifier publishes review events through an autopaho connection manager,
// which reconnects in the background.
type MQTTNotifier struct {
	cm          *autopaho.ConnectionManager
	topicPrefix string
}

// VehicleTopic is the topic a vehicle's inspection decisions are published on.
func VehicleTopic(prefix string, vehicleID fmt.Stringer) string {
	prefix = strings.TrimSuffix(prefix, "/")
	return fmt.Sprintf("%s/vehicles/%s/inspection", prefix, vehicleID.String())
}

// NewMQTTNotifier starts the connection manager. It does not wait for the
// first connection; publishes fail until the broker is reachable.
func NewMQTTNotifier(ctx context.Context, cfg configs.MQTTConfig) (*MQTTNotifier, error) {
	if !cfg.Enabled() {
		return nil, errors.New("mqtt broker url is empty")
	}
	brokerURL, err := url.Parse(cfg.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT_BROKER_URL: %w", err)
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{brokerURL},
		KeepAlive:                     30,
		CleanStartOnInitialConnection: true,
		ReconnectBackoff:              autopaho.NewConstantBackoff(3 * time.Second),
		ConnectTimeout:                10 * time.Second,
		ConnectUsername:               cfg.Username,
		ConnectPassword:               []byte(cfg.Password),
		OnConnectionUp: func(*autopaho.ConnectionManager, *paho.Connack) {
			configslog.SLog.Infof("MQTT connection established to %s", brokerURL.Host)
		},
		OnConnectError: func(err error) {
			configslog.Log.Warn("MQTT connection failed, retrying", zap.Error(err))
		},
		ClientConfig: paho.ClientConfig{
			ClientID: cfg.ClientID,
			OnClientError: func(err error) {
				configslog.Log.Error("MQTT client error", zap.Error(err))
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return nil, fmt.Errorf("start mqtt connection: %w", err)
	}
	return &MQTTNotifier{cm: cm, topicPrefix: cfg.TopicPrefix}, nil
}

func (n *MQTTNotifier) PublishReview(ctx context.Context, event ReviewEvent) error {
	payload, err := event.Payload()
	if err != nil {
		return fmt.Errorf("encode review event: %w", err)
	}
	_, err = n.cm.Publish(ctx, &paho.Publish{
		Topic:   VehicleTopic(n.topicPrefix, event.VehicleID),
		QoS:     publishQoS,
		Payload: payload,
	})
	return err
}

func (n *MQTTNotifier) Close(ctx context.Context) {
	if err := n.cm.Disconnect(ctx); err != nil {
		configslog.Log.Warn("MQTT disconnect failed", zap.Error(err))
		return
	}
	configslog.SLog.Info("MQTT connection closed")
}

var _ Notifier = (*MQTTNotifier)(nil)
