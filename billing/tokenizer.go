package billing

import "context"

// Tokenizer exchanges raw card details for an opaque payment-method
// reference with the external payment provider. Raw card data crosses this
// boundary only; the backend sees the returned reference and nothing else.
type Tokenizer interface {
	Tokenize(ctx context.Context, card CardDetails) (string, error)
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(ctx context.Context, card CardDetails) (string, error)

func (f TokenizerFunc) Tokenize(ctx context.Context, card CardDetails) (string, error) {
	return f(ctx, card)
}
