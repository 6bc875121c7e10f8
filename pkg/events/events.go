package events

type Level uint8

const (
	Debug Level = iota
	Info
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "?"
	}
}

// Event is a single diagnostic emitted while scaffolding.
type Event struct {
	Level   Level
	Step    string
	Message string
	Hint    string
	Error   error
}

type Handler interface {
	Handle(event Event)
}

// Discard drops every event.
var Discard Handler = HandlerFunc(func(Event) {})
