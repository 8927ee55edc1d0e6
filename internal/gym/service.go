package gym

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

type Service struct {
	c         *http.Client
	baseURL   string
	authToken string
	memberID  string
}

func NewService(c *http.Client, cfg Config) (*Service, error) {
	if c == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url cannot be empty")
	}
	if cfg.MemberID == "" {
		return nil, fmt.Errorf("member id cannot be empty")
	}

	return &Service{
		c:         c,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authToken: cfg.AuthToken,
		memberID:  cfg.MemberID,
	}, nil
}

func (s *Service) MemberID() string {
	return s.memberID
}

// GetClasses fetches every class in the next days days.
func (s *Service) GetClasses(ctx context.Context, days int) ([]Class, error) {
	if days <= 0 {
		days = DefaultDays
	}
	values := make(url.Values)
	values.Add(daysQueryName, strconv.Itoa(days))

	req, err := s.newRequest(ctx, http.MethodGet, classesPath, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = values.Encode()

	var classes []Class
	if err := s.do(req, "get classes", &classes); err != nil {
		return nil, err
	}
	logx.WithContext(ctx).Infof("fetched %d classes for %d days", len(classes), days)

	return classes, nil
}

// GetPendingTasks fetches the member's bookings that are not yet processed upstream.
func (s *Service) GetPendingTasks(ctx context.Context) ([]Task, error) {
	path := fmt.Sprintf(pendingTasksPath, url.PathEscape(s.memberID))
	req, err := s.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	if err := s.do(req, "get pending tasks", &tasks); err != nil {
		return nil, err
	}
	logx.WithContext(ctx).Infof("fetched %d pending tasks for member %s", len(tasks), s.memberID)

	return tasks, nil
}

// SignUp books the class for the configured member. The response body is ignored.
func (s *Service) SignUp(ctx context.Context, id, scheduledTime string) error {
	body, err := json.Marshal(SignUpRequest{
		ID:            id,
		MemberID:      s.memberID,
		ScheduledTime: scheduledTime,
	})
	if err != nil {
		return fmt.Errorf("unable to marshal sign up request: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, schedulePath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	logx.WithContext(ctx).Infof("submitting sign up request for class %s at %s", id, scheduledTime)

	return s.do(req, "sign up", nil)
}

func (s *Service) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("unable to generate new request: %w", err)
	}
	if s.authToken != "" {
		req.Header.Set(authorizationHeader, "Basic "+s.authToken)
	}
	req.Header.Set(contentTypeHeader, jsonContentType)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req, nil
}

// do sends req and decodes a JSON body into out when out is non-nil.
func (s *Service) do(req *http.Request, op string, out any) error {
	resp, err := s.c.Do(req)
	if err != nil {
		return fmt.Errorf("unable to complete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logx.WithContext(req.Context()).Errorf("%s failed, request id: %s, status: %d", op, req.Header.Get(requestIDHeader), resp.StatusCode)
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode %s response: %w", op, err)
	}

	return nil
}
