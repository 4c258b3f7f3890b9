// Package controller reacts to user actions: it calls the backend through the
// gateway, keeps the session store in step, and tells the View what changed.
package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/thesis-review-portal/internal/events"
	"github.com/SAP-F-2025/thesis-review-portal/internal/export"
	"github.com/SAP-F-2025/thesis-review-portal/internal/gateway"
	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
)

// RegistrationSucceeded is shown after a successful registration.
const RegistrationSucceeded = "Registration succeeded, please log in"

// Gateway is the backend surface the controller needs. *gateway.Client
// implements it.
type Gateway interface {
	Login(ctx context.Context, sess *session.Session, n gateway.Notifier, username, password string) bool
	Register(ctx context.Context, n gateway.Notifier, form models.RegisterRequest) bool
	GetThesisList(ctx context.Context, sess *session.Session, n gateway.Notifier, search string, status models.StatusFilter) []models.Thesis
	GetThesis(ctx context.Context, sess *session.Session, n gateway.Notifier, id uint) *models.Thesis
	SubmitThesis(ctx context.Context, sess *session.Session, n gateway.Notifier, upload gateway.ThesisUpload) bool
	SubmitReview(ctx context.Context, sess *session.Session, n gateway.Notifier, thesisID uint, review models.ReviewRequest) bool
	AssignTheses(ctx context.Context, sess *session.Session, n gateway.Notifier) bool
	GetStats(ctx context.Context, sess *session.Session, n gateway.Notifier) *models.Stats
}

type Controller struct {
	gateway   Gateway
	sessions  *session.Manager
	debouncer *Debouncer
	publisher events.Publisher
	exporter  *export.Exporter
	logger    *slog.Logger
}

func New(gw Gateway, sessions *session.Manager, debouncer *Debouncer, publisher events.Publisher, exporter *export.Exporter, logger *slog.Logger) *Controller {
	if debouncer == nil {
		debouncer = NewDebouncer(DefaultDebounceDelay)
	}
	if exporter == nil {
		exporter = export.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gateway:   gw,
		sessions:  sessions,
		debouncer: debouncer,
		publisher: publisher,
		exporter:  exporter,
		logger:    logger,
	}
}

// Login authenticates with the backend. On success the credentials are saved,
// navigation and the list are refreshed and the login dialog closes; on
// failure the dialog stays open.
func (c *Controller) Login(ctx context.Context, sess *session.Session, view View, form models.LoginRequest, query models.ListQuery) error {
	if !c.gateway.Login(ctx, sess, view, form.Username, form.Password) {
		return nil
	}
	if err := c.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.refreshNavigation(ctx, sess, view)
	c.reloadList(ctx, sess, view, query)
	view.CloseDialog(DialogLogin)

	c.publish(ctx, events.EventTypeUserLoggedIn, userData(sess.User))
	return nil
}

func (c *Controller) Register(ctx context.Context, view View, form models.RegisterRequest) {
	if !c.gateway.Register(ctx, view, form) {
		return
	}
	view.CloseDialog(DialogRegister)
	view.Notify(RegistrationSucceeded)

	c.publish(ctx, events.EventTypeUserRegistered, map[string]interface{}{
		"username":  form.Username,
		"is_expert": form.IsExpert,
	})
}

func (c *Controller) SubmitThesis(ctx context.Context, sess *session.Session, view View, upload gateway.ThesisUpload, query models.ListQuery) {
	if !c.gateway.SubmitThesis(ctx, sess, view, upload) {
		return
	}
	view.CloseDialog(DialogSubmitThesis)
	c.reloadList(ctx, sess, view, query)
	c.RefreshStats(ctx, sess, view)

	data := userData(sess.User)
	data["title"] = upload.Title
	data["has_file"] = upload.File != nil
	c.publish(ctx, events.EventTypeThesisSubmitted, data)
}

// SubmitReview sends a review for thesisID. scoreText is parsed leniently
// (see ParseScore) and never range checked.
func (c *Controller) SubmitReview(ctx context.Context, sess *session.Session, view View, thesisID uint, scoreText, comments string, query models.ListQuery) {
	review := models.ReviewRequest{
		Score:    ParseScore(scoreText),
		Comments: comments,
	}
	if !c.gateway.SubmitReview(ctx, sess, view, thesisID, review) {
		return
	}
	c.reloadList(ctx, sess, view, query)
	c.RefreshStats(ctx, sess, view)

	data := userData(sess.User)
	data["thesis_id"] = thesisID
	if review.Score != nil {
		data["score"] = *review.Score
	}
	c.publish(ctx, events.EventTypeReviewSubmitted, data)
}

// Logout forgets the credentials locally. The backend is not contacted.
func (c *Controller) Logout(ctx context.Context, sess *session.Session, view View) error {
	data := userData(sess.User)
	if err := c.sessions.Clear(ctx, sess); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	c.debouncer.Forget(listKey(sess))

	view.SetNavigation(false, nil)
	view.ClearThesisList()

	c.publish(ctx, events.EventTypeUserLoggedOut, data)
	return nil
}

// Search reloads the list once the input has been quiet for the debounce
// delay. It reports false when a later call superseded this one; nothing is
// fetched or shown in that case.
func (c *Controller) Search(ctx context.Context, sess *session.Session, view View, query models.ListQuery) bool {
	key := listKey(sess)
	gen := c.debouncer.Begin(key)
	if !c.debouncer.Settle(ctx, key, gen) {
		return false
	}
	return c.loadList(ctx, sess, view, query, gen)
}

// FilterStatus reloads the list immediately.
func (c *Controller) FilterStatus(ctx context.Context, sess *session.Session, view View, query models.ListQuery) bool {
	return c.reloadList(ctx, sess, view, query)
}

// AssignTheses asks the backend to distribute pending theses among experts.
func (c *Controller) AssignTheses(ctx context.Context, sess *session.Session, view View, query models.ListQuery) {
	if !c.gateway.AssignTheses(ctx, sess, view) {
		return
	}
	c.reloadList(ctx, sess, view, query)
	c.RefreshStats(ctx, sess, view)

	c.publish(ctx, events.EventTypeThesisAssigned, userData(sess.User))
}

// ExportThesisList writes the list matching query as an XLSX workbook. It
// returns false without writing anything when the list could not be loaded.
func (c *Controller) ExportThesisList(ctx context.Context, sess *session.Session, view View, query models.ListQuery, w io.Writer) (bool, error) {
	tracker := &failureTracker{notifier: view}
	records := c.gateway.GetThesisList(ctx, sess, tracker, query.Search, query.Status)
	if tracker.Failed() {
		return false, nil
	}
	if err := c.exporter.WriteThesisList(w, records); err != nil {
		return false, fmt.Errorf("failed to export thesis list: %w", err)
	}
	return true, nil
}

// Restore brings a freshly loaded page up to date with the stored credentials.
// The list and stats are only loaded when a token is present.
func (c *Controller) Restore(ctx context.Context, sess *session.Session, view View, query models.ListQuery) {
	view.SetNavigation(sess.Authenticated(), sess.User)
	if !sess.Authenticated() {
		return
	}

	var g errgroup.Group
	g.Go(func() error {
		c.reloadList(ctx, sess, view, query)
		return nil
	})
	g.Go(func() error {
		c.RefreshStats(ctx, sess, view)
		return nil
	})
	_ = g.Wait()
}

// ThesisDetail shows a single thesis. It returns false when it could not be
// loaded.
func (c *Controller) ThesisDetail(ctx context.Context, sess *session.Session, view View, id uint) bool {
	view.SetNavigation(sess.Authenticated(), sess.User)

	thesis := c.gateway.GetThesis(ctx, sess, view, id)
	if thesis == nil {
		return false
	}
	view.ShowThesisList([]models.Thesis{*thesis})
	return true
}

// RefreshStats reloads the counters. Anonymous sessions have none.
func (c *Controller) RefreshStats(ctx context.Context, sess *session.Session, view View) {
	if !sess.Authenticated() {
		return
	}
	if stats := c.gateway.GetStats(ctx, sess, view); stats != nil {
		view.ShowStats(stats)
	}
}

func (c *Controller) refreshNavigation(ctx context.Context, sess *session.Session, view View) {
	view.SetNavigation(sess.Authenticated(), sess.User)
	c.RefreshStats(ctx, sess, view)
}

func (c *Controller) reloadList(ctx context.Context, sess *session.Session, view View, query models.ListQuery) bool {
	return c.loadList(ctx, sess, view, query, c.debouncer.Begin(listKey(sess)))
}

// loadList fetches the list and shows it unless gen was superseded while the
// request was in flight.
func (c *Controller) loadList(ctx context.Context, sess *session.Session, view View, query models.ListQuery, gen uint64) bool {
	key := listKey(sess)
	defer c.debouncer.Release(key, gen)

	records := c.gateway.GetThesisList(ctx, sess, view, query.Search, query.Status)
	if !c.debouncer.Current(key, gen) {
		c.logger.DebugContext(ctx, "Discarding stale thesis list", "generation", gen)
		return false
	}
	view.ShowThesisList(records)
	return true
}

func (c *Controller) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		c.logger.WarnContext(ctx, "Failed to publish activity event", "event_type", eventType, "error", err)
	}
}

func listKey(sess *session.Session) string {
	return "thesis-list:" + sess.ID
}

func userData(user *models.User) map[string]interface{} {
	data := make(map[string]interface{})
	if user != nil {
		data["user_id"] = user.ID
		data["username"] = user.Username
	}
	return data
}

// ParseScore reads the leading integer of text the way a lenient form parser
// does: surrounding whitespace and an optional sign are accepted, anything
// after the digits is ignored ("95.5" is 95). Text without leading digits has
// no score. Values beyond the int range are kept as they are.
func ParseScore(text string) *json.Number {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)

	end := 0
	if end < len(text) && (text[end] == '+' || text[end] == '-') {
		end++
	}
	digits := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}

	n, ok := new(big.Int).SetString(text[:end], 10)
	if !ok {
		return nil
	}
	score := json.Number(n.String())
	return &score
}

// failureTracker forwards notifications and remembers that one happened.
type failureTracker struct {
	notifier gateway.Notifier
	failed   bool
}

func (f *failureTracker) Notify(message string) {
	f.failed = true
	f.notifier.Notify(message)
}

func (f *failureTracker) Failed() bool {
	return f.failed
}
