package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/muurk/nfcprofile/internal/config"
	"github.com/muurk/nfcprofile/internal/server"
)

func TestRunWriteTag_AgainstDaemon(t *testing.T) {
	tests := []struct {
		name     string
		resp     server.WriteResponse
		wantErr  bool
		wantText string
	}{
		{"written", server.WriteResponse{Key: "k1", OK: true}, false, "Tag written"},
		{"timed out", server.WriteResponse{Key: "k1", Error: "no tag presented"}, true, "no tag presented"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKey string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/write" {
					http.NotFound(w, r)
					return
				}
				gotKey = r.URL.Query().Get("key")
				_ = json.NewEncoder(w).Encode(tt.resp)
			}))
			defer srv.Close()

			prevURL, prevCfg := daemonURL, cfg
			t.Cleanup(func() { daemonURL, cfg = prevURL, prevCfg })
			daemonURL = srv.URL
			cfg = config.New()

			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)
			cmd.SetContext(context.Background())

			err := runWriteTag(cmd, []string{"k1"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runWriteTag() error = %v, wantErr %v", err, tt.wantErr)
			}
			if gotKey != "k1" {
				t.Errorf("daemon got key %q", gotKey)
			}
			text := out.String()
			if !strings.HasPrefix(text, "Hold a tag to the reader...\n") {
				t.Errorf("output does not start with the wait line: %q", text)
			}
			if !strings.Contains(text, tt.wantText) {
				t.Errorf("output missing %q: %q", tt.wantText, text)
			}
		})
	}
}
