package collaborators_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/collaborators"
	"github.com/weftlabs/weft/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestHTTPCaller_CallAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "weft", r.Header.Get("X-Source"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"ada"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u-1","ok":true}`))
	}))
	defer server.Close()

	caller := collaborators.NewHTTPCaller(testLogger())

	response, err := caller.CallAPI(t.Context(), actions.APIRequest{
		Method:  "post",
		URL:     server.URL,
		Headers: map[string]string{"X-Source": "weft"},
		Body:    map[string]any{"name": "ada"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, response.StatusCode)

	body, ok := response.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, body["ok"])
	assert.Contains(t, response.Headers["Content-Type"], "application/json")
}

func TestHTTPCaller_CallAPI_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))
	defer server.Close()

	caller := collaborators.NewHTTPCaller(testLogger())

	response, err := caller.CallAPI(t.Context(), actions.APIRequest{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "pong", response.Body)
}

func TestHTTPCaller_SendWebhook(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	caller := collaborators.NewHTTPCaller(testLogger())

	status, err := caller.SendWebhook(t.Context(), actions.Webhook{
		URL:     server.URL,
		Payload: map[string]any{"event": "workflow_completed"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "workflow_completed", received["event"])
}

func TestFileExporter_JSON(t *testing.T) {
	exporter := collaborators.NewFileExporter(t.TempDir())

	location, err := exporter.Export(t.Context(), actions.Export{
		Format:      "json",
		Destination: "reports/daily",
		Data:        map[string]any{"total": 3},
	})
	require.NoError(t, err)
	assert.Contains(t, location, filepath.Join("reports", "daily"))
	assert.True(t, strings.HasSuffix(location, ".json"))

	raw, err := os.ReadFile(location)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.InDelta(t, 3.0, decoded["total"], 0.0001)
}

func TestFileExporter_CSV(t *testing.T) {
	exporter := collaborators.NewFileExporter(t.TempDir())

	location, err := exporter.Export(t.Context(), actions.Export{
		Format: "csv",
		Data: []any{
			map[string]any{"name": "ada", "score": 10},
			map[string]any{"name": "lin", "score": 7},
		},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(location)
	require.NoError(t, err)

	csvLines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, csvLines, 3)
	assert.Equal(t, "name,score", csvLines[0])
	assert.Equal(t, "ada,10", csvLines[1])
}

func TestFileExporter_UnsupportedFormat(t *testing.T) {
	exporter := collaborators.NewFileExporter(t.TempDir())

	_, err := exporter.Export(t.Context(), actions.Export{Format: "xlsx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestConsole(t *testing.T) {
	console := collaborators.NewConsole(testLogger())

	delivery, err := console.SendMessage(t.Context(), actions.Message{Recipient: "u-1", Text: "hi"})
	require.NoError(t, err)
	assert.Contains(t, delivery["message_id"], "msg-")

	taskID, err := console.CreateTask(t.Context(), actions.Task{Title: "Follow up"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(taskID, "task-"))

	require.NoError(t, console.SendNotification(t.Context(), actions.Notification{
		Channel:  "alerts",
		Message:  "disk almost full",
		Priority: "high",
	}))
}

func TestLexiconClassifier(t *testing.T) {
	classifier := collaborators.NewLexiconClassifier()

	testCases := []struct {
		name          string
		text          string
		analysisType  models.AnalysisType
		expectedLabel string
		minConfidence float64
		maxConfidence float64
	}{
		{
			name:          "clearly positive",
			text:          "I love this, great product, thanks!",
			analysisType:  models.AnalysisSentiment,
			expectedLabel: "positive",
			minConfidence: 0.75,
			maxConfidence: 0.95,
		},
		{
			name:          "clearly negative",
			text:          "this is terrible and broken",
			analysisType:  models.AnalysisSentiment,
			expectedLabel: "negative",
			minConfidence: 0.75,
			maxConfidence: 0.95,
		},
		{
			name:          "no signal is neutral",
			text:          "the sky is blue today",
			analysisType:  models.AnalysisSentiment,
			expectedLabel: "neutral",
			minConfidence: 0.5,
			maxConfidence: 0.5,
		},
		{
			name:          "single weak hit stays below threshold",
			text:          "good morning",
			analysisType:  models.AnalysisSentiment,
			expectedLabel: "positive",
			minConfidence: 0.7,
			maxConfidence: 0.7499,
		},
		{
			name:          "flagged content",
			text:          "this spam scam again",
			analysisType:  models.AnalysisContentModeration,
			expectedLabel: "inappropriate",
			minConfidence: 0.75,
			maxConfidence: 0.95,
		},
		{
			name:          "clean content is safe",
			text:          "have a nice day",
			analysisType:  models.AnalysisContentModeration,
			expectedLabel: "safe",
			minConfidence: 0.9,
			maxConfidence: 0.9,
		},
		{
			name:          "question intent",
			text:          "how do I reset my password, can you help",
			analysisType:  models.AnalysisIntentDetection,
			expectedLabel: "question",
			minConfidence: 0.75,
			maxConfidence: 0.95,
		},
		{
			name:          "purchase intent",
			text:          "I would like to buy and subscribe",
			analysisType:  models.AnalysisIntentDetection,
			expectedLabel: "purchase",
			minConfidence: 0.75,
			maxConfidence: 0.95,
		},
		{
			name:          "no intent signal",
			text:          "lorem ipsum",
			analysisType:  models.AnalysisIntentDetection,
			expectedLabel: "general",
			minConfidence: 0.4,
			maxConfidence: 0.4,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			classification, err := classifier.Classify(t.Context(), testCase.text, testCase.analysisType)
			require.NoError(t, err)

			assert.Equal(t, testCase.expectedLabel, classification.Label)
			assert.GreaterOrEqual(t, classification.Confidence, testCase.minConfidence)
			assert.LessOrEqual(t, classification.Confidence, testCase.maxConfidence)
		})
	}
}

func TestLexiconClassifier_UnknownType(t *testing.T) {
	classifier := collaborators.NewLexiconClassifier()

	_, err := classifier.Classify(t.Context(), "anything", models.AnalysisType("topic"))
	require.Error(t, err)
}

func TestLocal_CoversEveryCollaborator(t *testing.T) {
	set := collaborators.Local(testLogger(), t.TempDir())

	assert.NotNil(t, set.Messages)
	assert.NotNil(t, set.API)
	assert.NotNil(t, set.Tasks)
	assert.NotNil(t, set.Notifications)
	assert.NotNil(t, set.Webhooks)
	assert.NotNil(t, set.Exports)
	assert.NotNil(t, set.Classifier)
}
