package testutil

import "strings"

// Greeting is the first line of every session.
const Greeting = "hello\r\n"

// ScenarioStepUp drives a fresh 30x30 session one step up from the centre,
// then asks for the coordinates and a render.
var ScenarioStepUp = []string{"steps 1", "coord", "render"}

// Script joins command lines into a client byte stream, each line CRLF-terminated.
func Script(lines ...string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}
	return sb.String()
}
