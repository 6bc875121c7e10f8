package events

import (
	"fmt"
	"strings"
)

type Summary struct {
	Warnings []Event
	Errors   []Event

	Full []Event
}

func (s Summary) Clean() bool {
	return len(s.Warnings) == 0 && len(s.Errors) == 0
}

func (s Summary) String() string {
	var b strings.Builder

	write := func(title string, list []Event) {
		if len(list) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s (%d):\n", title, len(list))
		for _, ev := range list {
			if ev.Error != nil {
				fmt.Fprintf(&b, "- %s (%s)\n", ev.Message, ev.Error.Error())
			} else {
				fmt.Fprintf(&b, "- %s\n", ev.Message)
			}
			if ev.Hint != "" {
				fmt.Fprintf(&b, "  %s\n", ev.Hint)
			}
		}
	}

	write("Errors", s.Errors)
	write("Warnings", s.Warnings)

	return strings.TrimSuffix(b.String(), "\n")
}
