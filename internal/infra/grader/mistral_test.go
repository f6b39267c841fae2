package grader

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMistralGrader_Grade(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr string
	}{
		{
			name:   "string content",
			status: http.StatusOK,
			body:   `{"conversation_id":"c1","outputs":[{"type":"message.output","role":"assistant","content":"Баллы: 2\nВерно."}]}`,
			want:   "Баллы: 2\nВерно.",
		},
		{
			name:   "chunked content",
			status: http.StatusOK,
			body: `{"outputs":[{"type":"message.output","role":"assistant","content":[` +
				`{"type":"text","text":"Баллы: 1"},{"type":"tool_reference","title":"x"},{"type":"text","text":"\nЧастично."}]}]}`,
			want: "Баллы: 1\nЧастично.",
		},
		{
			name:    "no outputs",
			status:  http.StatusOK,
			body:    `{"outputs":[]}`,
			wantErr: "no outputs",
		},
		{
			name:    "error status",
			status:  http.StatusUnauthorized,
			body:    `{"message":"Unauthorized"}`,
			wantErr: "status 401",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotReq map[string]string
			var gotAuth, gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotPath = r.URL.Path
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &gotReq)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			g := NewMistralGrader(srv.URL+"/", "mk", "agent-1")
			out, err := g.Grade(context.Background(), "prompt text")

			assert.Equal(t, "/v1/conversations", gotPath)
			assert.Equal(t, "Bearer mk", gotAuth)
			assert.Equal(t, map[string]string{"agent_id": "agent-1", "inputs": "prompt text"}, gotReq)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}
