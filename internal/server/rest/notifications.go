package rest

import "net/http"

type markReadResponse struct {
	Updated int64 `json:"updated"`
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Notifications.List(r.Context(), identity(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Notifications.MarkRead(r.Context(), identity(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, markReadResponse{Updated: n})
}
