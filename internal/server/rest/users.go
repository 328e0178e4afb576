package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/gorilla/mux"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest accepts the login email as either "email" or "identifier".
type loginRequest struct {
	Email      string `json:"email"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type profileRequest struct {
	Name   string  `json:"name"`
	Course *string `json:"course"`
	Bio    *string `json:"bio"`
}

const (
	fieldAvatar    = "avatar"
	fieldPostImage = "postImage"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	u, err := s.svc.Users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	email := req.Email
	if email == "" {
		email = req.Identifier
	}
	res, err := s.svc.Users.Login(r.Context(), email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	u, err := s.svc.Users.GetProfile(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	u, err := s.svc.Users.UpdateProfile(r.Context(), identity(r), id, models.ProfileUpdate{
		Name:   req.Name,
		Course: req.Course,
		Bio:    req.Bio,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	file, err := formFile(r, fieldAvatar)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if file == nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.close()

	u, err := s.svc.Users.UpdateAvatar(r.Context(), identity(r), &file.FileUpload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.Search(r.Context(), identity(r), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", common.ErrorValidation)
	}
	return id, nil
}

// parseMultipart caps the body at MaxUploadSize and parses the form.
// A non-multipart body is left alone.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > s.maxUpload {
		return &http.MaxBytesError{Limit: s.maxUpload}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil
		}
		return fmt.Errorf("%w: malformed multipart body", common.ErrorValidation)
	}
	return nil
}

type upload struct {
	services.FileUpload
	close func() error
}

// formFile returns nil when the field is absent.
func formFile(r *http.Request, field string) (*upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return &upload{
		FileUpload: services.FileUpload{Filename: hdr.Filename, Body: f},
		close:      f.Close,
	}, nil
}
