package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"casevault/internal/models"
)

const (
	actorIDHeader    = "X-Actor-Id"
	actorEmailHeader = "X-Actor-Email"
	actorOrgHeader   = "X-Org-Id"
)

// withAuth enforces the bearer token when one is configured and resolves
// the acting identity from the gateway-supplied headers.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.apiToken != "" {
			presented := bearerToken(r)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(s.apiToken)) != 1 {
				s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("invalid or missing api token")))
				return
			}
		}

		identity, err := identityFromHeaders(r)
		if err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeMissingRequired))
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithIdentity(r.Context(), identity)))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// identityFromHeaders trusts the fronting gateway to have authenticated the
// examiner and forwarded who they are. Reads tolerate a missing actor;
// writes check for one in the handler because audit rows need it.
func identityFromHeaders(r *http.Request) (models.Identity, error) {
	var identity models.Identity

	if raw := strings.TrimSpace(r.Header.Get(actorIDHeader)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return identity, fmt.Errorf("invalid %s header", actorIDHeader)
		}
		identity.UserID = id
	}
	if raw := strings.TrimSpace(r.Header.Get(actorOrgHeader)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return identity, fmt.Errorf("invalid %s header", actorOrgHeader)
		}
		identity.OrgID = id
	}
	identity.Email = strings.TrimSpace(r.Header.Get(actorEmailHeader))

	return identity, nil
}

func requireActor(r *http.Request) (models.Identity, error) {
	identity, ok := identityFromContext(r.Context())
	if !ok || identity.UserID <= 0 {
		return models.Identity{}, unauthorized(fmt.Errorf("%s header is required", actorIDHeader))
	}
	return identity, nil
}
