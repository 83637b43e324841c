package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature(t *testing.T) {
	body := []byte(`{"events":[]}`)
	secret := "channel-secret"

	require.True(t, ValidateSignature(secret, body, sign(secret, body)))
	require.False(t, ValidateSignature(secret, body, sign("other-secret", body)))
	require.False(t, ValidateSignature(secret, []byte(`tampered`), sign(secret, body)))
	require.False(t, ValidateSignature(secret, body, "not base64 !!!"))
	require.False(t, ValidateSignature(secret, body, ""))
}

func TestWebhook_Parse(t *testing.T) {
	payload := `{
		"destination": "U0000",
		"events": [
			{
				"type": "message",
				"replyToken": "rt-1",
				"timestamp": 1678500000000,
				"source": {"type": "user", "userId": "u1"},
				"message": {"id": "m1", "type": "text", "text": "hi"}
			},
			{
				"type": "follow",
				"replyToken": "rt-2",
				"source": {"type": "user", "userId": "u2"}
			}
		]
	}`

	var hook Webhook
	require.NoError(t, json.Unmarshal([]byte(payload), &hook))
	require.Len(t, hook.Events, 2)
	require.Equal(t, "rt-1", hook.Events[0].ReplyToken)
	require.Equal(t, "u1", hook.Events[0].Source.UserID)
	require.Equal(t, "hi", hook.Events[0].Message.Text)
}

func TestEvent_IsTextMessage(t *testing.T) {
	text := Event{
		Type:    EventTypeMessage,
		Message: EventMessage{Type: MessageTypeText, Text: "hi"},
		Source:  EventSource{UserID: "u1"},
	}
	require.True(t, text.IsTextMessage())

	sticker := text
	sticker.Message.Type = "sticker"
	require.False(t, sticker.IsTextMessage())

	follow := text
	follow.Type = "follow"
	require.False(t, follow.IsTextMessage())

	anonymous := text
	anonymous.Source.UserID = ""
	require.False(t, anonymous.IsTextMessage())
}
