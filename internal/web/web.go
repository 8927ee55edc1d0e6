// Package web serves the class board as HTML pages with a small JSON surface.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/itsHabib/rsvpboard/internal/board"
	"github.com/itsHabib/rsvpboard/internal/notify"
	"github.com/itsHabib/rsvpboard/internal/schedule"
)

const (
	jsonContentType = "application/json"

	statusParam = "status"
	classParam  = "class"

	statusSignedUp      = "signed-up"
	statusSignUpFailed  = "sign-up-failed"
	statusSignUpPending = "sign-up-pending"

	dateLayout = "2006-01-02"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	board    *board.Board
	notifier notify.Notifier
	tmpl     *template.Template
}

func NewServer(b *board.Board, n notify.Notifier) (*Server, error) {
	if b == nil {
		return nil, fmt.Errorf("board cannot be nil")
	}
	if n == nil {
		n = notify.Log{}
	}
	tmpl, err := template.New("board").Funcs(template.FuncMap{
		"dayLabel":  dayLabel,
		"dateLabel": dateLabel,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("unable to parse templates: %w", err)
	}

	return &Server{board: b, notifier: n, tmpl: tmpl}, nil
}

// Routes wires the board handlers.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleBoard)
	mux.HandleFunc("GET /days/{date}", s.handleSelectDay)
	mux.HandleFunc("POST /next", s.handleNext)
	mux.HandleFunc("POST /prev", s.handlePrev)
	mux.HandleFunc("POST /classes/{id}/signup", s.handleSignUp)
	mux.HandleFunc("POST /reload", s.handleReload)
	mux.HandleFunc("GET /healthz", handleHealth)
	return mux
}

// Handler is Routes behind the standard middleware stack.
func (s *Server) Handler(csrfKey []byte, secure bool, trustedOrigins []string) http.Handler {
	return Chain(s.Routes(), Logging, SecurityHeaders, CSRF(csrfKey, secure, trustedOrigins))
}

// LoadInBackground starts a load without waiting for it.
func (s *Server) LoadInBackground(ctx context.Context) {
	go func() {
		if err := s.board.Load(ctx); err != nil && !board.IsStale(err) {
			logx.WithContext(ctx).Errorf("initial load failed: %v", err)
		}
	}()
}

type pageData struct {
	board.View
	Notice    string
	NoticeErr bool
	CSRFField template.HTML
}

type viewJSON struct {
	board.View
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	v := s.board.View()

	if wantsJSON(r) {
		out := viewJSON{View: v, State: v.State.String()}
		if v.Err != nil {
			out.Error = v.Err.Error()
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	data := pageData{View: v, CSRFField: csrf.TemplateField(r)}
	data.Notice, data.NoticeErr = notice(r.URL.Query(), s.board)

	name := "board.html"
	switch v.State {
	case board.LOADING:
		name = "loading.html"
	case board.FAILED:
		name = "error.html"
	}
	s.render(w, r, name, data)
}

func (s *Server) handleSelectDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !schedule.ValidDate(date) {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	s.board.Select(date)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.board.Advance()
	s.redirectOrJSON(w, r)
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	s.board.Retreat()
	s.redirectOrJSON(w, r)
}

// handleReload is detached from the request so a client that goes away
// mid-reload does not leave the board failed.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	err := s.board.Load(ctx)
	if err != nil && !board.IsStale(err) {
		logx.WithContext(ctx).Errorf("reload failed: %v", err)
	}
	s.redirectOrJSON(w, r)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	err := s.board.SignUpClass(ctx, id)
	if errors.Is(err, board.ErrSignUpPending) {
		logx.WithContext(ctx).Infof("sign up for class %s already in flight", id)
		s.signUpResponse(w, r, id, statusSignUpPending, err)
		return
	}

	event := notify.Event{Kind: notify.SIGNED_UP, ClassID: id}
	if c, ok := s.board.Class(id); ok {
		event.Title = c.Title
		event.ScheduledTime = c.Schedule()
	}
	status := statusSignedUp
	if err != nil {
		event.Kind = notify.SIGN_UP_FAILED
		event.Err = err
		status = statusSignUpFailed
	}
	if nerr := s.notifier.Notify(ctx, event); nerr != nil {
		logx.WithContext(ctx).Errorf("unable to notify: %v", nerr)
	}

	s.signUpResponse(w, r, id, status, err)
}

func (s *Server) signUpResponse(w http.ResponseWriter, r *http.Request, id, status string, err error) {
	if wantsJSON(r) {
		if err != nil {
			writeJSON(w, signUpErrorCode(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"signedUp": true})
		return
	}

	values := url.Values{statusParam: {status}, classParam: {id}}
	http.Redirect(w, r, "/?"+values.Encode(), http.StatusSeeOther)
}

// signUpErrorCode maps a sign-up failure to a status code. Only failures of
// the booking service itself are reported as 502.
func signUpErrorCode(err error) int {
	switch {
	case errors.Is(err, board.ErrUnknownClass):
		return http.StatusNotFound
	case errors.Is(err, board.ErrNoSchedule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, board.ErrSignUpPending):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) redirectOrJSON(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		v := s.board.View()
		writeJSON(w, http.StatusOK, viewJSON{View: v, State: v.State.String()})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logx.WithContext(r.Context()).Errorf("unable to render %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func notice(q url.Values, b *board.Board) (string, bool) {
	id := q.Get(classParam)
	title := id
	if c, ok := b.Class(id); ok {
		title = c.Title
	}
	switch q.Get(statusParam) {
	case statusSignedUp:
		return fmt.Sprintf("Successfully signed up for %s!", title), false
	case statusSignUpFailed:
		return notify.Event{Kind: notify.SIGN_UP_FAILED, Title: title}.Message(), true
	case statusSignUpPending:
		return fmt.Sprintf("A sign up for %s is already in progress.", title), true
	default:
		return "", false
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), jsonContentType) ||
		strings.HasPrefix(r.Header.Get("Content-Type"), jsonContentType)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Errorf("unable to encode response: %v", err)
	}
}

// dayLabel renders 2024-01-02 as "Tue 2".
func dayLabel(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Mon 2")
}

// dateLabel renders 2024-01-02 as "Tuesday, January 2".
func dateLabel(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2")
}
