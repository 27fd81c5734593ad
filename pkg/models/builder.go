package models

import "time"

// NormalizedMessageBuilder assembles messages field by field. Mostly useful
// in tests and the synchronous classify API.
type NormalizedMessageBuilder struct {
	msg *NormalizedMessage
}

func NewNormalizedMessageBuilder() *NormalizedMessageBuilder {
	return &NormalizedMessageBuilder{
		msg: &NormalizedMessage{
			ChatType: ChatTypeIndividual,
		},
	}
}

func (b *NormalizedMessageBuilder) WithMessageID(id string) *NormalizedMessageBuilder {
	b.msg.MessageID = id
	return b
}

func (b *NormalizedMessageBuilder) WithTenant(tenantID, userID string) *NormalizedMessageBuilder {
	b.msg.TenantID = tenantID
	b.msg.UserID = userID
	return b
}

func (b *NormalizedMessageBuilder) WithSender(senderID string) *NormalizedMessageBuilder {
	b.msg.SenderID = senderID
	return b
}

func (b *NormalizedMessageBuilder) WithSenderName(name string) *NormalizedMessageBuilder {
	b.msg.SenderName = name
	return b
}

func (b *NormalizedMessageBuilder) WithContent(content string) *NormalizedMessageBuilder {
	b.msg.Content = content
	return b
}

func (b *NormalizedMessageBuilder) WithCaption(caption string) *NormalizedMessageBuilder {
	b.msg.Caption = caption
	return b
}

func (b *NormalizedMessageBuilder) WithChatType(chatType ChatType) *NormalizedMessageBuilder {
	b.msg.ChatType = chatType
	return b
}

func (b *NormalizedMessageBuilder) WithTimestamp(ts int64) *NormalizedMessageBuilder {
	b.msg.Timestamp = ts
	return b
}

func (b *NormalizedMessageBuilder) WithTraceID(traceID string) *NormalizedMessageBuilder {
	b.msg.TraceID = traceID
	return b
}

func (b *NormalizedMessageBuilder) Build() *NormalizedMessage {
	if b.msg.Timestamp == 0 {
		b.msg.Timestamp = time.Now().Unix()
	}
	return b.msg
}
