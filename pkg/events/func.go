package events

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(event Event)

func (h HandlerFunc) Handle(event Event) {
	h(event)
}

// Tee forwards every event to each of handlers in order.
func Tee(handlers ...Handler) Handler {
	return HandlerFunc(func(event Event) {
		for _, h := range handlers {
			if h != nil {
				h.Handle(event)
			}
		}
	})
}
