package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/nydiamedina/consumer-complaints-etl/internal/config"
)

// Downloader ensures the dataset file exists locally and returns its path.
type Downloader interface {
	Ensure(ctx context.Context) (string, error)
}

// Loader runs a full load of the dataset into the database.
type Loader interface {
	LoadAll(ctx context.Context, batchSize int) error
}

type ComplaintService struct {
	downloader Downloader
	loader     Loader
	cfg        config.Config
}

func NewComplaintService(downloader Downloader, loader Loader, cfg config.Config) *ComplaintService {
	return &ComplaintService{
		downloader: downloader,
		loader:     loader,
		cfg:        cfg,
	}
}

type downloadResponse struct {
	Message  string `json:"message"`
	DataPath string `json:"data_path"`
}

type loadResponse struct {
	Message string `json:"message"`
}

func (h *ComplaintService) DownloadComplaints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dataPath, err := h.downloader.Ensure(r.Context())
	if err != nil {
		log.Printf("Download failed: %v", err)
		http.Error(w, "Failed to download dataset", http.StatusInternalServerError)
		return
	}

	writeJSON(w, downloadResponse{
		Message:  "Dataset downloaded successfully.",
		DataPath: dataPath,
	})
}

func (h *ComplaintService) LoadAllComplaints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	batchSize, ok := h.batchSizeParam(w, r)
	if !ok {
		return
	}

	if err := h.loader.LoadAll(r.Context(), batchSize); err != nil {
		log.Printf("Load failed: %v", err)
		http.Error(w, "Failed to load data", http.StatusInternalServerError)
		return
	}

	writeJSON(w, loadResponse{Message: "Data loaded successfully."})
}

// LoadBatchComplaints is declared but intentionally not implemented.
func (h *ComplaintService) LoadBatchComplaints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// batchSizeParam parses and bounds-checks the batch_size query parameter,
// before any table operation happens. Replies 400 and returns false when the
// value is unusable.
func (h *ComplaintService) batchSizeParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	batchSize := h.cfg.DefaultBatchSize

	if value := r.URL.Query().Get("batch_size"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			http.Error(w, "Invalid 'batch_size': expected an integer", http.StatusBadRequest)
			return 0, false
		}
		batchSize = parsed
	}

	if batchSize < h.cfg.MinBatchSize || batchSize > h.cfg.MaxBatchSize {
		http.Error(w, "Invalid 'batch_size': out of range", http.StatusBadRequest)
		return 0, false
	}

	return batchSize, true
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
