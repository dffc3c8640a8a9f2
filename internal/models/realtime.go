package models

// InboundFrame is the only payload clients send over an established
// connection. Frames without a message are dropped.
type InboundFrame struct {
	Message string `json:"message"`
}

// ChatEvent carries one formatted chat line to room subscribers.
type ChatEvent struct {
	Type    string `json:"type"` // always "chat"
	Message string `json:"message"`
}

// UserListEvent is the presence snapshot pushed on every roster change.
type UserListEvent struct {
	Type   string   `json:"type"` // always "user_list"
	All    []string `json:"all"`
	Online []string `json:"online"`
}

// PrivateAlertEvent notifies the global channel that a private message was
// sent. Content is deliberately omitted.
type PrivateAlertEvent struct {
	Type   string `json:"type"` // always "private_alert"
	Sender string `json:"sender"`
	Target string `json:"target"`
}

func NewChatEvent(formatted string) ChatEvent {
	return ChatEvent{Type: "chat", Message: formatted}
}

func NewUserListEvent(all, online []string) UserListEvent {
	if all == nil {
		all = []string{}
	}
	if online == nil {
		online = []string{}
	}
	return UserListEvent{Type: "user_list", All: all, Online: online}
}

func NewPrivateAlertEvent(sender, target string) PrivateAlertEvent {
	return PrivateAlertEvent{Type: "private_alert", Sender: sender, Target: target}
}
