package history

import "context"

// Reader looks up sender statistics. Implementations return (nil, nil)
// when no history exists; a nil SenderHistory means first contact.
type Reader interface {
	GetSenderHistory(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error)
}

// ReaderFunc adapts a function into a Reader.
type ReaderFunc func(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error)

func (f ReaderFunc) GetSenderHistory(ctx context.Context, tenantID, userID, senderID string) (*SenderHistory, error) {
	return f(ctx, tenantID, userID, senderID)
}
