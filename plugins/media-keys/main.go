// Package main provides a media key plugin for macOS and Linux.
// It presses keys via AppleScript on macOS and xdotool elsewhere.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PressParams defines parameters for the press action.
type PressParams struct {
	Key string `json:"key"`
}

// keyStroke is how one key is pressed on each platform.
type keyStroke struct {
	// AppleScript fragment run through System Events.
	apple string
	// xdotool key name.
	xdotool string
}

// keyMap maps key names to platform key strokes. Media keys on macOS have no
// System Events key code, so they go through the closest AppleScript command.
var keyMap = map[string]keyStroke{
	"space":      {apple: `tell application "System Events" to key code 49`, xdotool: "space"},
	"playpause":  {apple: `tell application "Music" to playpause`, xdotool: "XF86AudioPlay"},
	"nexttrack":  {apple: `tell application "Music" to next track`, xdotool: "XF86AudioNext"},
	"prevtrack":  {apple: `tell application "Music" to previous track`, xdotool: "XF86AudioPrev"},
	"stop":       {apple: `tell application "Music" to pause`, xdotool: "XF86AudioStop"},
	"volumeup":   {apple: `set volume output volume ((output volume of (get volume settings)) + 6)`, xdotool: "XF86AudioRaiseVolume"},
	"volumedown": {apple: `set volume output volume ((output volume of (get volume settings)) - 6)`, xdotool: "XF86AudioLowerVolume"},
	"volumemute": {apple: `set volume with output muted`, xdotool: "XF86AudioMute"},
}

func main() {
	resp := handle(os.Stdin, runtime.GOOS, runCommand)
	json.NewEncoder(os.Stdout).Encode(resp)
}

// handle decodes one request, presses the key and builds the response.
func handle(r io.Reader, goos string, run func(name string, args ...string) error) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return errorResponse(fmt.Sprintf("failed to decode request: %v", err))
	}

	if req.Action != "press" {
		return errorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}

	var p PressParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(fmt.Sprintf("failed to parse params: %v", err))
	}

	name, args, err := pressCommand(goos, p.Key)
	if err != nil {
		return errorResponse(err.Error())
	}
	if err := run(name, args...); err != nil {
		return errorResponse(fmt.Sprintf("action press failed: %v", err))
	}

	data, _ := json.Marshal(map[string]string{"key": p.Key, "gesture": req.Gesture})
	return Response{Success: true, Data: data}
}

// pressCommand returns the program and arguments that press key on goos.
func pressCommand(goos, key string) (string, []string, error) {
	if key == "" {
		return "", nil, errors.New("key is required")
	}

	stroke, ok := keyMap[key]
	if !ok {
		return "", nil, fmt.Errorf("unknown key: %s", key)
	}

	switch goos {
	case "darwin":
		return "osascript", []string{"-e", stroke.apple}, nil
	case "linux", "freebsd", "openbsd":
		return "xdotool", []string{"key", stroke.xdotool}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

func errorResponse(msg string) Response {
	return Response{Success: false, Error: msg}
}

func runCommand(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
