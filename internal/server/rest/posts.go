package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/server/services"
)

type createPostRequest struct {
	Content string `json:"content"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// createPost accepts either a JSON body or a multipart form with an optional
// "postImage" file and a "content" field.
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var (
		content string
		image   *upload
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := s.parseMultipart(w, r); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		content = r.FormValue("content")
		f, err := formFile(r, fieldPostImage)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		image = f
	} else {
		var req createPostRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		content = req.Content
	}

	var file *services.FileUpload
	if image != nil {
		defer image.close()
		file = &image.FileUpload
	}
	post, err := s.svc.Posts.CreatePost(r.Context(), identity(r), content, file)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) listFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := s.svc.Posts.ListFeed(r.Context(), identity(r).UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) listUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	posts, err := s.svc.Posts.ListUserPosts(r.Context(), identity(r).UserID, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.svc.Posts.DeletePost(r.Context(), identity(r), postID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	res, err := s.svc.Posts.ToggleLike(r.Context(), identity(r), postID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	comments, err := s.svc.Comments.List(r.Context(), identity(r), postID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	c, err := s.svc.Comments.Create(r.Context(), identity(r), postID, req.Content)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
