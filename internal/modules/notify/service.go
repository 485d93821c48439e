// Package notify delivers fire-and-forget messages to participants. Delivery
// is best-effort: failures are logged, never surfaced to the request that
// triggered them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mealrelay.org/app/internal/mailer"
)

type Dispatcher struct {
	mail     mailer.Service
	from     string
	fromName string
	log      *slog.Logger
}

func NewDispatcher(mail mailer.Service, from, fromName string, log *slog.Logger) *Dispatcher {
	return &Dispatcher{mail: mail, from: from, fromName: fromName, log: log}
}

// PickupCode sends the claim's pickup code to the recipient. Returns
// immediately; the send runs in the background with its own deadline.
func (d *Dispatcher) PickupCode(recipientEmail, restaurantName, code string, pickupTime time.Time) {
	subject := "Your pickup code - MealRelay"
	textBody := fmt.Sprintf(
		"Your meal claim at %s is confirmed.\n\nPickup code: %s\nPickup by: %s\n\nShow this code at the counter.",
		restaurantName, code, pickupTime.Format("Mon Jan 2 3:04 PM"))

	htmlBody := `
<html>
  <body style="font-family: sans-serif;">
    <h2>Claim Confirmed</h2>
    <p>Your meal claim at <strong>` + restaurantName + `</strong> is confirmed.</p>
    <p><strong>Pickup code:</strong> ` + code + `</p>
    <p><strong>Pickup by:</strong> ` + pickupTime.Format("Mon Jan 2 3:04 PM") + `</p>
    <p>Show this code at the counter.</p>
  </body>
</html>
`

	e := mailer.Email{
		FromName: d.fromName,
		From:     d.from,
		To:       []string{recipientEmail},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := d.mail.Send(ctx, e); err != nil {
			d.log.LogAttrs(ctx, slog.LevelWarn, "pickup_code_email_failed",
				slog.String("recipient", recipientEmail),
				slog.Any("err", err),
			)
		}
	}()
}
