// Command desktop-notify is an alert hook that raises a desktop notification
// (osascript on macOS, notify-send elsewhere) for drowsiness events.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Event is the payload written to stdin by the alert dispatcher.
type Event struct {
	ID       string  `json:"id"`
	Session  string  `json:"session"`
	Status   string  `json:"status"`
	Previous string  `json:"previous"`
	EAR      float64 `json:"ear"`
	MAR      float64 `json:"mar"`
}

// Response is printed to stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

var messages = map[string]string{
	"Drowsy":  "Eyes closed for too long. Take a break.",
	"Yawning": "Yawn detected. Consider resting soon.",
}

func main() {
	var ev Event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		writeResponse(fmt.Errorf("failed to decode event: %w", err))
		return
	}

	msg, ok := messages[ev.Status]
	if !ok {
		writeResponse(nil)
		return
	}

	title := fmt.Sprintf("nidra: %s", ev.Status)
	body := fmt.Sprintf("%s (EAR %.3f, MAR %.3f)", msg, ev.EAR, ev.MAR)
	writeResponse(notify(title, body))
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q sound name \"Glass\"", body, title)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", "--urgency=critical", title, body)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
