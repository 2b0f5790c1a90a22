package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeIssueParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "มอเตอร์ร้อน")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "ตรวจสอบพัดลมระบายความร้อน"}},
				},
			}},
		})
	}))
	defer srv.Close()

	svc := NewService("test-key", srv.URL, nil)
	got := svc.AnalyzeIssue(context.Background(), "มอเตอร์ร้อน", "PX-200")
	assert.Equal(t, "ตรวจสอบพัดลมระบายความร้อน", got)
}

func TestAnalyzeIssueFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService("test-key", srv.URL, nil)
	assert.Equal(t, fallbackAnalysisTH, svc.AnalyzeIssue(context.Background(), "x", "y"))
}

func TestAnalyzeIssueFallsBackWithoutKey(t *testing.T) {
	svc := NewService("", "https://example.invalid", nil)
	assert.Equal(t, fallbackAnalysisTH, svc.AnalyzeIssue(context.Background(), "x", "y"))
}

func TestFallbackFollowsLanguage(t *testing.T) {
	svc := NewService("", "https://example.invalid", func() string { return "EN" })
	assert.Equal(t, fallbackAnalysisEN, svc.AnalyzeIssue(context.Background(), "x", "y"))
	assert.Equal(t, fallbackReportEN, svc.GenerateEfficiencyReport(context.Background(), "metrics"))
}

func TestReportFallsBackOnEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	svc := NewService("test-key", srv.URL, nil)
	assert.Equal(t, fallbackReportTH, svc.GenerateEfficiencyReport(context.Background(), "metrics"))
}
