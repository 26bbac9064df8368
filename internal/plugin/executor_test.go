package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    []string{"press"},
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "ok-plugin", `#!/bin/sh
cat <<'EOF'
{"success":true,"data":{"message":"pressed"}}
EOF
`)

	req, err := NewKeyRequest("press", "Point", "nexttrack")
	if err != nil {
		t.Fatalf("NewKeyRequest() error = %v", err)
	}

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !response.Success {
		t.Error("expected success=true")
	}
	if response.Error != "" {
		t.Errorf("expected empty error, got %q", response.Error)
	}

	var data map[string]string
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "pressed" {
		t.Errorf("expected message 'pressed', got %q", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo-plugin", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	req, err := NewKeyRequest("press", "Fist", "stop")
	if err != nil {
		t.Fatalf("NewKeyRequest() error = %v", err)
	}

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received Request `json:"received"`
	}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data.Received.Action != "press" {
		t.Errorf("expected action 'press', got %q", data.Received.Action)
	}
	if data.Received.Gesture != "Fist" {
		t.Errorf("expected gesture 'Fist', got %q", data.Received.Gesture)
	}

	var params KeyParams
	if err := json.Unmarshal(data.Received.Params, &params); err != nil {
		t.Fatalf("failed to decode params: %v", err)
	}
	if params.Key != "stop" {
		t.Errorf("expected key 'stop', got %q", params.Key)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow-plugin", `#!/bin/sh
sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Action: "press"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExecutor_ContextCanceled(t *testing.T) {
	plugin := scriptPlugin(t, "slow-plugin", `#!/bin/sh
sleep 10
echo '{"success":true}'
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExecutor(5*time.Second).Execute(ctx, plugin, &Request{Action: "press"}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
		errMsg  string
	}{
		{
			name: "error response",
			script: `#!/bin/sh
echo '{"success":false,"error":"unknown key"}'
`,
			errMsg: "unknown key",
		},
		{
			name: "invalid json",
			script: `#!/bin/sh
echo 'not valid json'
`,
			wantErr: true,
		},
		{
			name: "non-zero exit",
			script: `#!/bin/sh
echo "Error: something failed" >&2
exit 1
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := scriptPlugin(t, "test-plugin", tt.script)

			response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "press"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() failed: %v", err)
			}
			if response.Success {
				t.Error("expected success=false")
			}
			if response.Error != tt.errMsg {
				t.Errorf("expected error %q, got %q", tt.errMsg, response.Error)
			}
		})
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(3 * time.Second).Timeout(); got != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", got)
	}
	if got := NewExecutor(0).Timeout(); got != 5*time.Second {
		t.Errorf("expected default timeout 5s, got %s", got)
	}
}
