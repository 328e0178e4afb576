package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/sethvargo/go-retry"
)

const (
	fieldAvatar    = "avatar"
	fieldPostImage = "postImage"

	defaultRetries   = 2
	defaultRetryBase = 200 * time.Millisecond
)

// HTTPClient talks to the REST API. Safe for concurrent use.
type HTTPClient struct {
	baseURL   string
	http      *http.Client
	token     func() string
	retries   uint64
	retryBase time.Duration
}

// NewHTTPClient returns a client for baseURL. token is consulted on every
// request; an empty result sends the request without credentials.
func NewHTTPClient(baseURL string, timeout time.Duration, token func() string) *HTTPClient {
	if token == nil {
		token = func() string { return "" }
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		token:     token,
		retries:   defaultRetries,
		retryBase: defaultRetryBase,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// get performs an idempotent request, retrying transport failures and 5xx
// responses with exponential backoff.
func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.retryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, nil, "", out)
		var apiErr *APIError
		if errors.Is(err, ErrUnavailable) || (errors.As(err, &apiErr) && apiErr.Status >= 500) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *HTTPClient) sendMultipart(ctx context.Context, path string, fields map[string]string, fileField string, f *File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("encode form: %w", err)
		}
	}
	if f != nil {
		part, err := mw.CreateFormFile(fileField, f.Name)
		if err != nil {
			return fmt.Errorf("encode form: %w", err)
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if t := c.token(); t != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil || eb.Error == "" {
			eb.Error = strings.ToLower(http.StatusText(resp.StatusCode))
		}
		return newAPIError(resp.StatusCode, eb.Error)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, "", nil)
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var u models.User
	if err := c.sendJSON(ctx, http.MethodPost, "/register", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	in := map[string]string{"email": email, "password": password}
	var res models.LoginResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/login", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, idPath("/profile/%d", userID), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.sendJSON(ctx, http.MethodPut, idPath("/profile/%d", userID), upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UploadAvatar(ctx context.Context, f File) (*models.User, error) {
	var u models.User
	if err := c.sendMultipart(ctx, "/profile/upload-avatar", nil, fieldAvatar, &f, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	var users []models.UserSummary
	if err := c.get(ctx, "/search/users?q="+url.QueryEscape(query), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreatePost sends JSON for text posts and multipart when image is set.
func (c *HTTPClient) CreatePost(ctx context.Context, content string, image *File) (*models.Post, error) {
	var p models.Post
	var err error
	if image != nil {
		err = c.sendMultipart(ctx, "/posts", map[string]string{"content": content}, fieldPostImage, image, &p)
	} else {
		err = c.sendJSON(ctx, http.MethodPost, "/posts", map[string]string{"content": content}, &p)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Feed(ctx context.Context) ([]models.PostView, error) {
	var posts []models.PostView
	if err := c.get(ctx, "/posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *HTTPClient) UserPosts(ctx context.Context, userID int64) ([]models.PostView, error) {
	var posts []models.PostView
	if err := c.get(ctx, idPath("/posts/user/%d", userID), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *HTTPClient) DeletePost(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/posts/%d", postID), nil, "", nil)
}

func (c *HTTPClient) ToggleLike(ctx context.Context, postID int64) (*models.LikeResult, error) {
	var res models.LikeResult
	if err := c.sendJSON(ctx, http.MethodPost, idPath("/posts/%d/toggle-like", postID), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.get(ctx, idPath("/posts/%d/comments", postID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *HTTPClient) AddComment(ctx context.Context, postID int64, content string) (*models.Comment, error) {
	var cm models.Comment
	in := map[string]string{"content": content}
	if err := c.sendJSON(ctx, http.MethodPost, idPath("/posts/%d/comments", postID), in, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *HTTPClient) Notifications(ctx context.Context) ([]models.Notification, error) {
	var list []models.Notification
	if err := c.get(ctx, "/notifications", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) MarkNotificationsRead(ctx context.Context) (int64, error) {
	var res struct {
		Updated int64 `json:"updated"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/notifications/read", nil, &res); err != nil {
		return 0, err
	}
	return res.Updated, nil
}
