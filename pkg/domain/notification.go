package domain

// Notification is the side-channel payload relayed to the inference webhook.
// The JSON keys, spaces included, are what the webhook expects.
type Notification struct {
	Data NotificationData `json:"data"`
}

type NotificationData struct {
	Conversation     Conversation `json:"conversation"`
	FacialExpression string       `json:"facial expressions"`
	TimeOfDay        string       `json:"Time of the day"`
	Tone             string       `json:"tone"`
}

type Conversation struct {
	Bot  string         `json:"bot"`
	User MessageContent `json:"user"`
}
