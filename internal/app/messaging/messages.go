package messaging

import (
	"fmt"

	"dmdesk/internal/domain/dm"
)

// Operator-facing status texts.
const (
	MsgUsernameRequired = "❌ Username is required"
	MsgMessageRequired  = "❌ Message cannot be empty"
)

func accountNotFoundText(handle string) string {
	return fmt.Sprintf("❌ User @%s not found", handle)
}

func lookupFailedText(handle string) string {
	return fmt.Sprintf("❌ Could not look up @%s. Check the connection and try again.", handle)
}

func deliveryFailedText(reason string) string {
	return "❌ Failed to send message\n\n" + reason
}

func deliveredText(outcome dm.DeliveryOutcome) string {
	return fmt.Sprintf("✅ Message sent successfully\n\nUser: @%s\nUser ID: %s\n\nMessage:\n%s",
		outcome.RecipientHandle, outcome.RecipientID, outcome.Body)
}
