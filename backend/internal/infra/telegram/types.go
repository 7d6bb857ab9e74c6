package telegram

import "encoding/json"

// Update 对应 Bot API getUpdates 返回的单条更新，这里只保留消息场景需要的字段。
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message 描述一条入站消息。
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// User 是消息发送者，ID 即鉴权用的调用者身份。
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// Chat 是消息所属会话。
type Chat struct {
	ID int64 `json:"id"`
}

// apiEnvelope 是 Bot API 所有响应的公共外壳。
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// sendMessageRequest 是 sendMessage 的请求体。
type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// getUpdatesRequest 是 getUpdates 的请求体，timeout 以秒计，用于长轮询。
type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}
