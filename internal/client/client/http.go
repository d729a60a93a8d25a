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

	"github.com/dmitrijs2005/staffdesk/internal/client/models"
	"github.com/dmitrijs2005/staffdesk/internal/common"
	"github.com/dmitrijs2005/staffdesk/internal/logging"
)

// HTTPClient implements Gateway over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the default *http.Client, e.g. with an
// httptest server's client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// NewHTTPClient builds a client for the API rooted at baseURL
// (e.g. http://localhost:5000/api).
func NewHTTPClient(baseURL string, log logging.Logger, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log.With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ Gateway = (*HTTPClient)(nil)

// leaveRecord is the wire shape of a leave request. The owner arrives either
// as a populated user object or as a bare id.
type leaveRecord struct {
	ID     models.ID          `json:"id"`
	UserID models.ID          `json:"userId"`
	Start  models.Date        `json:"start"`
	End    models.Date        `json:"end"`
	Reason string             `json:"reason"`
	Status models.LeaveStatus `json:"status"`
	User   json.RawMessage    `json:"user"`
}

func (r leaveRecord) toModel() (models.LeaveRequest, error) {
	lr := models.LeaveRequest{
		ID:          r.ID,
		OwnerUserID: r.UserID,
		Period:      models.DateRange{Start: r.Start, End: r.End},
		Reason:      r.Reason,
		Status:      r.Status,
	}
	if lr.Status == "" {
		lr.Status = models.LeavePending
	}

	raw := bytes.TrimSpace(r.User)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		var owner models.LeaveOwner
		if err := json.Unmarshal(raw, &owner); err != nil {
			return models.LeaveRequest{}, fmt.Errorf("decode leave owner: %w", err)
		}
		lr.Owner = &owner
		if lr.OwnerUserID == "" {
			lr.OwnerUserID = owner.ID
		}
	default:
		var id models.ID
		if err := json.Unmarshal(raw, &id); err != nil {
			return models.LeaveRequest{}, fmt.Errorf("decode leave owner id: %w", err)
		}
		if lr.OwnerUserID == "" {
			lr.OwnerUserID = id
		}
	}
	return lr, nil
}

func toLeaveModels(records []leaveRecord) ([]models.LeaveRequest, error) {
	out := make([]models.LeaveRequest, 0, len(records))
	for _, r := range records {
		lr, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, nil
}

type leaveList struct {
	AllLeaves []leaveRecord `json:"allLeaves"`
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: string(password)}

	var res LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/users/login", "", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, &common.APIError{Status: http.StatusOK, Message: "login response carried no token"}
	}
	return &res, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.RawProfile, error) {
	var users []models.RawProfile
	if err := c.doJSON(ctx, http.MethodGet, "/users", "", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, id models.ID) (*models.RawProfile, error) {
	var u models.RawProfile
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id.String()), "", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) EditProfile(ctx context.Context, token string, id models.ID, req EditProfileRequest) error {
	return c.doJSON(ctx, http.MethodPatch, "/users/editprofile/"+url.PathEscape(id.String()), token, req, nil)
}

func (c *HTTPClient) EditUser(ctx context.Context, token string, id models.ID, req EditUserRequest) error {
	return c.doJSON(ctx, http.MethodPatch, "/users/edituser/"+url.PathEscape(id.String()), token, req, nil)
}

func (c *HTTPClient) EditImage(ctx context.Context, token string, id models.ID, img models.Image) error {
	form, contentType, err := buildForm(nil, &img)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/users/editimage/"+url.PathEscape(id.String()), token, contentType, form, nil)
}

func (c *HTTPClient) Signup(ctx context.Context, token string, req SignupRequest) error {
	fields := [][2]string{
		{"name", req.Name},
		{"email", req.Email},
		{"password", req.Password},
		{"position", req.Position},
		{"nationalId", req.NationalID},
		{"taxId", req.TaxID},
		{"dateOfJoining", req.DateOfJoining.Format(time.RFC3339)},
	}
	form, contentType, err := buildForm(fields, req.Image)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/users/signup", token, contentType, form, nil)
}

func (c *HTTPClient) ActiveLeave(ctx context.Context) ([]models.LeaveRequest, error) {
	var records []leaveRecord
	if err := c.doJSON(ctx, http.MethodGet, "/leave/active", "", nil, &records); err != nil {
		return nil, err
	}
	return toLeaveModels(records)
}

func (c *HTTPClient) AllLeave(ctx context.Context, token string) ([]models.LeaveRequest, error) {
	var list leaveList
	if err := c.doJSON(ctx, http.MethodGet, "/leave", token, nil, &list); err != nil {
		return nil, err
	}
	return toLeaveModels(list.AllLeaves)
}

func (c *HTTPClient) UserLeave(ctx context.Context, token string, userID models.ID) ([]models.LeaveRequest, error) {
	var list leaveList
	if err := c.doJSON(ctx, http.MethodGet, "/leave/user/"+url.PathEscape(userID.String()), token, nil, &list); err != nil {
		return nil, err
	}
	return toLeaveModels(list.AllLeaves)
}

func (c *HTTPClient) CreateLeave(ctx context.Context, token string, req CreateLeaveRequest) (*models.LeaveRequest, error) {
	var rec leaveRecord
	if err := c.doJSON(ctx, http.MethodPost, "/leave", token, req, &rec); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		return nil, nil
	}
	lr, err := rec.toModel()
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

func (c *HTTPClient) UpdateLeaveStatus(ctx context.Context, token string, id models.ID, status models.LeaveStatus) error {
	body := struct {
		Status models.LeaveStatus `json:"status"`
	}{Status: status}
	return c.doJSON(ctx, http.MethodPatch, "/leave/updateStatus/"+url.PathEscape(id.String()), token, body, nil)
}

func buildForm(fields [][2]string, img *models.Image) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if img != nil && len(img.Data) > 0 {
		name := img.Filename
		if name == "" {
			name = "image"
		}
		part, err := w.CreateFormFile("image", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, contentType, body, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			c.log.Debug(ctx, "request aborted", "method", method, "path", path)
			return fmt.Errorf("%s %s: %w", method, path, common.ErrAborted)
		}
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w: %v", method, path, common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "api request", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(started))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s %s: %w", method, path, common.ErrAborted)
		}
		return fmt.Errorf("%s %s: read body: %w: %v", method, path, common.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp.StatusCode, raw)
		c.log.Warn(ctx, "api error", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return classify(apiErr)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *common.APIError {
	apiErr := &common.APIError{Status: status}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}

// classify maps status codes with a dedicated kind onto the sentinel,
// keeping the server message in the chain.
func classify(apiErr *common.APIError) error {
	var kind error
	switch apiErr.Status {
	case http.StatusUnauthorized:
		kind = common.ErrUnauthorized
	case http.StatusForbidden:
		kind = common.ErrForbidden
	case http.StatusNotFound:
		if apiErr.Message == "" {
			kind = common.ErrNotFound
		}
	}
	if kind == nil {
		return apiErr
	}
	if apiErr.Message == "" {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, apiErr)
}
