package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"casevault/internal/content"
	"casevault/internal/models"
	"casevault/internal/objectpath"
)

// decodePathID resolves one obfuscated path token to its internal id.
// Malformed and non-canonical tokens get the same not-found answer as ids
// that were never issued, so the reply leaks nothing about the id space.
func (s *Server) decodePathID(r *http.Request, name string) (int64, error) {
	token := r.PathValue(name)
	id, err := s.codec.Decode(token)
	if err != nil {
		return 0, notFound(fmt.Errorf("unknown %s", name))
	}
	return id, nil
}

func (s *Server) scopeForResource(r *http.Request, caseID int64, resType models.ResourceType) (models.Scope, error) {
	if resType == models.ResourceTab {
		return models.SharedScope(caseID), nil
	}
	actor, err := requireActor(r)
	if err != nil {
		return models.Scope{}, err
	}
	return models.PersonalScope(caseID, actor.UserID), nil
}

func mapContentError(err error) error {
	switch {
	case errors.Is(err, content.ErrNotFound):
		return notFound(err)
	case errors.Is(err, content.ErrBucketMissing):
		return makeAPIError(http.StatusInternalServerError, "storage_misconfigured", ErrCodeStorageMisconfigured, err)
	case errors.Is(err, content.ErrNoProvenance):
		return internalErrorCode(err, ErrCodeNoProvenance)
	case errors.Is(err, content.ErrIntegrity):
		return internalErrorCode(err, ErrCodeIntegrityFailure)
	default:
		return internalErrorCode(err, ErrCodeInternal)
	}
}

func (s *Server) handleUploadNote(w http.ResponseWriter, r *http.Request) {
	s.uploadText(w, r, models.ResourceNote, "noteID")
}

func (s *Server) handleUploadTab(w http.ResponseWriter, r *http.Request) {
	s.uploadText(w, r, models.ResourceTab, "tabID")
}

func (s *Server) uploadText(w http.ResponseWriter, r *http.Request, resType models.ResourceType, idName string) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	caseID, err := s.decodePathID(r, "caseID")
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	resID, err := s.decodePathID(r, idName)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	scope, err := s.scopeForResource(r, caseID, resType)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}

	data, err := readBody(w, r)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}

	result, err := s.content.UploadText(r.Context(), actor, scope, models.Resource{Type: resType, ID: resID}, data)
	if err != nil {
		mapped := mapContentError(err)
		s.writeErrorReq(w, r, httpStatusFromError(mapped), mapped)
		return
	}

	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	s.getText(w, r, models.ResourceNote, "noteID")
}

func (s *Server) handleGetTab(w http.ResponseWriter, r *http.Request) {
	s.getText(w, r, models.ResourceTab, "tabID")
}

func (s *Server) getText(w http.ResponseWriter, r *http.Request, resType models.ResourceType, idName string) {
	caseID, err := s.decodePathID(r, "caseID")
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	resID, err := s.decodePathID(r, idName)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	scope, err := s.scopeForResource(r, caseID, resType)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}

	result, err := s.content.DownloadText(r.Context(), scope, models.Resource{Type: resType, ID: resID})
	if err != nil {
		mapped := mapContentError(err)
		s.writeErrorReq(w, r, httpStatusFromError(mapped), mapped)
		return
	}

	s.writeVerified(w, result)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	resType, err := models.ParseResourceType(r.PathValue("resourceType"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidResource))
		return
	}
	caseID, err := s.decodePathID(r, "caseID")
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	resID, err := s.decodePathID(r, "resourceID")
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	fileName := r.PathValue("fileName")
	if err := objectpath.ValidateImageFileName(fileName); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidFileName))
		return
	}
	scope, err := s.scopeForResource(r, caseID, resType)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}

	data, err := readBody(w, r)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := s.content.UploadImage(r.Context(), actor, scope, models.Resource{Type: resType, ID: resID}, fileName, data, contentType)
	if err != nil {
		mapped := mapContentError(err)
		s.writeErrorReq(w, r, httpStatusFromError(mapped), mapped)
		return
	}

	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleImageURL(w http.ResponseWriter, r *http.Request) {
	resType, err := models.ParseResourceType(r.PathValue("resourceType"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidResource))
		return
	}
	caseID, err := s.decodePathID(r, "caseID")
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	resID, err := s.decodePathID(r, "resourceID")
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}
	fileName := r.PathValue("fileName")
	if err := objectpath.ValidateImageFileName(fileName); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidFileName))
		return
	}
	scope, err := s.scopeForResource(r, caseID, resType)
	if err != nil {
		s.writeErrorReq(w, r, httpStatusFromError(err), err)
		return
	}

	u, err := s.content.PresignImage(r.Context(), scope, models.Resource{Type: resType, ID: resID}, fileName)
	if err != nil {
		mapped := mapContentError(err)
		s.writeErrorReq(w, r, httpStatusFromError(mapped), mapped)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"url":        u.String(),
		"expires_in": int(content.PresignTTL.Seconds()),
	})
}

// writeVerified returns the content bytes with their provenance in headers.
func (s *Server) writeVerified(w http.ResponseWriter, result content.DownloadResult) {
	w.Header().Set("Content-Type", result.Info.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Version-Id", result.Info.VersionID)
	w.Header().Set("X-Content-Md5", result.Record.MD5)
	w.Header().Set("X-Content-Sha256", result.Record.SHA256)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		s.log().Error("write content response", "error", err)
	}
}
