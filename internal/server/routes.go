package server

import (
	"net/http"
)

func SetupRoutes(complaintHandler *ComplaintService) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/complaints/download", complaintHandler.DownloadComplaints)
	mux.HandleFunc("/api/complaints/load_all", complaintHandler.LoadAllComplaints)
	mux.HandleFunc("/api/complaints/load_batch", complaintHandler.LoadBatchComplaints)

	return mux
}
