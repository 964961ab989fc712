package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/nydiamedina/consumer-complaints-etl/internal/config"
)

type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) Ensure(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadAll(ctx context.Context, batchSize int) error {
	args := m.Called(ctx, batchSize)
	return args.Error(0)
}

func testConfig() config.Config {
	return config.Config{
		MinBatchSize:     1,
		MaxBatchSize:     1000,
		DefaultBatchSize: 1000,
	}
}

func newService() (*ComplaintService, *MockDownloader, *MockLoader) {
	downloader := new(MockDownloader)
	loader := new(MockLoader)
	return NewComplaintService(downloader, loader, testConfig()), downloader, loader
}

func TestComplaintService_DownloadComplaints(t *testing.T) {
	t.Run("should download and return the data path", func(t *testing.T) {
		service, downloader, _ := newService()
		downloader.On("Ensure", mock.Anything).Return("data/complaints.csv", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/complaints/download", nil)
		rr := httptest.NewRecorder()

		service.DownloadComplaints(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Dataset downloaded successfully.", body["message"])
		assert.Equal(t, "data/complaints.csv", body["data_path"])

		downloader.AssertExpectations(t)
	})

	t.Run("should return 500 when the download fails", func(t *testing.T) {
		service, downloader, _ := newService()
		downloader.On("Ensure", mock.Anything).Return("", errors.New("network down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/complaints/download", nil)
		rr := httptest.NewRecorder()

		service.DownloadComplaints(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "network down", "failure detail is not exposed to the caller")
	})

	t.Run("should reject non-POST methods", func(t *testing.T) {
		service, downloader, _ := newService()

		req := httptest.NewRequest(http.MethodGet, "/api/complaints/download", nil)
		rr := httptest.NewRecorder()

		service.DownloadComplaints(rr, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		downloader.AssertNotCalled(t, "Ensure", mock.Anything)
	})
}

func TestComplaintService_LoadAllComplaints(t *testing.T) {
	t.Run("should load with the requested batch size", func(t *testing.T) {
		service, _, loader := newService()
		loader.On("LoadAll", mock.Anything, 250).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/complaints/load_all?batch_size=250", nil)
		rr := httptest.NewRecorder()

		service.LoadAllComplaints(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Data loaded successfully.", body["message"])

		loader.AssertExpectations(t)
	})

	t.Run("should default the batch size", func(t *testing.T) {
		service, _, loader := newService()
		loader.On("LoadAll", mock.Anything, 1000).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/complaints/load_all", nil)
		rr := httptest.NewRecorder()

		service.LoadAllComplaints(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		loader.AssertExpectations(t)
	})

	t.Run("should reject out-of-range batch sizes before loading", func(t *testing.T) {
		for _, value := range []string{"0", "1001", "-1"} {
			service, _, loader := newService()

			req := httptest.NewRequest(http.MethodPost, "/api/complaints/load_all?batch_size="+value, nil)
			rr := httptest.NewRecorder()

			service.LoadAllComplaints(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code, "batch_size=%s", value)
			loader.AssertNotCalled(t, "LoadAll", mock.Anything, mock.Anything)
		}
	})

	t.Run("should reject a non-integer batch size", func(t *testing.T) {
		service, _, loader := newService()

		req := httptest.NewRequest(http.MethodPost, "/api/complaints/load_all?batch_size=lots", nil)
		rr := httptest.NewRecorder()

		service.LoadAllComplaints(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		loader.AssertNotCalled(t, "LoadAll", mock.Anything, mock.Anything)
	})

	t.Run("should return 500 when the load fails", func(t *testing.T) {
		service, _, loader := newService()
		loader.On("LoadAll", mock.Anything, 1000).Return(errors.New("copy failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/complaints/load_all", nil)
		rr := httptest.NewRecorder()

		service.LoadAllComplaints(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestComplaintService_LoadBatchComplaints(t *testing.T) {
	service, _, loader := newService()

	req := httptest.NewRequest(http.MethodPost, "/api/complaints/load_batch?batch_size=10", nil)
	rr := httptest.NewRecorder()

	service.LoadBatchComplaints(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	loader.AssertNotCalled(t, "LoadAll", mock.Anything, mock.Anything)
}

func TestSetupRoutes(t *testing.T) {
	service, downloader, _ := newService()
	downloader.On("Ensure", mock.Anything).Return("data/complaints.csv", nil).Once()

	mux := SetupRoutes(service)

	req := httptest.NewRequest(http.MethodPost, "/api/complaints/download", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	downloader.AssertExpectations(t)
}
