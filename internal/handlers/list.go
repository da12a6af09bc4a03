package handlers

import "context"

// Handler transforms transcript text. Handlers are total: they rewrite
// text or pass it through, they cannot fail.
type Handler interface {
	Process(ctx context.Context, text string) string
}

// ListHandler runs text through its handlers in order.
type ListHandler struct {
	handlers []Handler
}

func NewListHandler() *ListHandler {
	return &ListHandler{}
}

func (sp *ListHandler) Process(ctx context.Context, text string) string {
	for _, h := range sp.handlers {
		text = h.Process(ctx, text)
	}
	return text
}

func (sp *ListHandler) Add(h Handler) {
	sp.handlers = append(sp.handlers, h)
}
