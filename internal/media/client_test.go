package media

import (
	"context"
	"errors"
	"testing"

	"pitchreel/internal/generation"
)

func TestClassifyVendorError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want generation.ErrorClass
	}{
		{
			name: "permissionDenied",
			err:  errors.New("rpc error: code = PermissionDenied desc = PERMISSION_DENIED: Vertex AI API has not been used"),
			want: generation.ClassAuthRequired,
		},
		{
			name: "unauthenticated",
			err:  errors.New("UNAUTHENTICATED: request had invalid credentials"),
			want: generation.ClassAuthRequired,
		},
		{
			name: "malformedRequest",
			err:  errors.New("invalid argument: aspect ratio"),
			want: generation.ClassSubmissionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyVendorError(tt.err)
			if got.Class != tt.want {
				t.Errorf("class = %v, want %v", got.Class, tt.want)
			}
			if got.Message == "" {
				t.Error("classification lost the vendor message")
			}
		})
	}
}

func TestOperationErrorMessage(t *testing.T) {
	if got := operationErrorMessage(map[string]any{"message": "quota exceeded", "code": 8}); got != "quota exceeded" {
		t.Errorf("got %q", got)
	}
	if got := operationErrorMessage(map[string]any{"code": 13}); got == "" {
		t.Error("fallback message is empty")
	}
}

func TestPollImageHandleIsTerminal(t *testing.T) {
	c := &Client{}
	handle := &jobHandle{
		id: "imagen-1",
		outcome: &generation.PollResult{
			Done:     true,
			Payload:  []byte("png"),
			MIMEType: "image/png",
		},
	}

	res, err := c.Poll(context.Background(), handle)
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if !res.Done || string(res.Payload) != "png" {
		t.Errorf("res = %+v", res)
	}

	// Polling again reports the same stored outcome.
	again, err := c.Poll(context.Background(), handle)
	if err != nil {
		t.Fatalf("second Poll() error: %v", err)
	}
	if !again.Done || string(again.Payload) != "png" {
		t.Errorf("second poll res = %+v", again)
	}
}

func TestPollForeignHandle(t *testing.T) {
	c := &Client{}

	res, err := c.Poll(context.Background(), foreignHandle{})
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if !res.Done || res.Error == nil {
		t.Errorf("res = %+v, want terminal error", res)
	}
}

type foreignHandle struct{}

func (foreignHandle) ID() string { return "foreign" }
