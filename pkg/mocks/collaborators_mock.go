package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/models"
)

// MockMessageSender is a mock implementation of the actions.MessageSender interface.
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) SendMessage(ctx context.Context, message actions.Message) (map[string]any, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]any), args.Error(1)
}

// MockAPICaller is a mock implementation of the actions.APICaller interface.
type MockAPICaller struct {
	mock.Mock
}

func (m *MockAPICaller) CallAPI(ctx context.Context, request actions.APIRequest) (*actions.APIResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*actions.APIResponse), args.Error(1)
}

// MockTaskCreator is a mock implementation of the actions.TaskCreator interface.
type MockTaskCreator struct {
	mock.Mock
}

func (m *MockTaskCreator) CreateTask(ctx context.Context, task actions.Task) (string, error) {
	args := m.Called(ctx, task)

	return args.String(0), args.Error(1)
}

// MockNotificationSender is a mock implementation of the actions.NotificationSender interface.
type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) SendNotification(ctx context.Context, notification actions.Notification) error {
	args := m.Called(ctx, notification)

	return args.Error(0)
}

// MockWebhookSender is a mock implementation of the actions.WebhookSender interface.
type MockWebhookSender struct {
	mock.Mock
}

func (m *MockWebhookSender) SendWebhook(ctx context.Context, webhook actions.Webhook) (int, error) {
	args := m.Called(ctx, webhook)

	return args.Int(0), args.Error(1)
}

// MockDataExporter is a mock implementation of the actions.DataExporter interface.
type MockDataExporter struct {
	mock.Mock
}

func (m *MockDataExporter) Export(ctx context.Context, export actions.Export) (string, error) {
	args := m.Called(ctx, export)

	return args.String(0), args.Error(1)
}

// MockClassifier is a mock implementation of the actions.Classifier interface.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string, analysisType models.AnalysisType) (actions.Classification, error) {
	args := m.Called(ctx, text, analysisType)

	return args.Get(0).(actions.Classification), args.Error(1)
}
