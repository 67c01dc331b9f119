package notify

import (
	"context"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/pkg/errors"
)

// defaultTTL is how long push services keep undelivered messages, in seconds.
const defaultTTL = 24 * 60 * 60

// Subscription is the endpoint and keys of a browser push subscription.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Sender delivers an encrypted payload to one subscription and returns the
// HTTP status code of the push service.
type Sender interface {
	Send(ctx context.Context, sub Subscription, payload []byte) (int, error)
}

// VAPID holds the application server keys.
type VAPID struct {
	Subject    string
	PublicKey  string
	PrivateKey string
}

// WebPush sends notifications with the Web Push protocol.
type WebPush struct {
	vapid  VAPID
	client *http.Client
}

// NewWebPush returns a sender using the keys and HTTP client.
func NewWebPush(vapid VAPID, client *http.Client) *WebPush {
	if client == nil {
		client = http.DefaultClient
	}

	return &WebPush{
		vapid:  vapid,
		client: client,
	}
}

func (w *WebPush) Send(ctx context.Context, sub Subscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      w.client,
		Subscriber:      w.vapid.Subject,
		VAPIDPublicKey:  w.vapid.PublicKey,
		VAPIDPrivateKey: w.vapid.PrivateKey,
		TTL:             defaultTTL,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return 0, errors.Wrap(err, "sending push notification failed")
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
