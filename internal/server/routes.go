package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Contemporaneous notes, one text body per note, private to the
	// authoring examiner.
	mux.HandleFunc("PUT /v1/cases/{caseID}/contemporaneous-notes/{noteID}", s.handleUploadNote)
	mux.HandleFunc("GET /v1/cases/{caseID}/contemporaneous-notes/{noteID}", s.handleGetNote)

	// Tabs, one text body per tab, shared across the case team.
	mux.HandleFunc("PUT /v1/cases/{caseID}/tabs/{tabID}", s.handleUploadTab)
	mux.HandleFunc("GET /v1/cases/{caseID}/tabs/{tabID}", s.handleGetTab)

	// Image attachments on either resource kind.
	mux.HandleFunc("PUT /v1/cases/{caseID}/{resourceType}/{resourceID}/images/{fileName}", s.handleUploadImage)
	mux.HandleFunc("GET /v1/cases/{caseID}/{resourceType}/{resourceID}/images/{fileName}/url", s.handleImageURL)

	var handler http.Handler = mux
	handler = s.withAuth(handler)
	handler = s.withRequestLogging(handler)
	return handler
}
