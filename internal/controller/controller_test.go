package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/thesis-review-portal/internal/events"
	"github.com/SAP-F-2025/thesis-review-portal/internal/export"
	"github.com/SAP-F-2025/thesis-review-portal/internal/gateway"
	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
)

type listCall struct {
	search string
	status models.StatusFilter
}

// fakeGateway answers from canned values and records what it was asked.
type fakeGateway struct {
	mu sync.Mutex

	loginOK    bool
	registerOK bool
	submitOK   bool
	reviewOK   bool
	assignOK   bool
	failList   bool
	failureMsg string

	records []models.Thesis
	stats   *models.Stats
	thesis  *models.Thesis

	// blockSearch holds list calls for that search text until release closes.
	blockSearch string
	blocked     chan struct{}
	release     chan struct{}

	listCalls   []listCall
	statsCalls  int
	reviews     []models.ReviewRequest
	tokensSeen  []string
	submissions []gateway.ThesisUpload
}

func (g *fakeGateway) Login(_ context.Context, sess *session.Session, n gateway.Notifier, username, _ string) bool {
	if !g.loginOK {
		n.Notify(g.failureMsg)
		return false
	}
	sess.Token = "t1"
	sess.User = &models.User{ID: 1, Username: username}
	return true
}

func (g *fakeGateway) Register(_ context.Context, n gateway.Notifier, _ models.RegisterRequest) bool {
	if !g.registerOK {
		n.Notify(g.failureMsg)
	}
	return g.registerOK
}

func (g *fakeGateway) GetThesisList(_ context.Context, sess *session.Session, n gateway.Notifier, search string, status models.StatusFilter) []models.Thesis {
	g.mu.Lock()
	g.listCalls = append(g.listCalls, listCall{search: search, status: status})
	g.tokensSeen = append(g.tokensSeen, sess.Token)
	block := g.blockSearch != "" && search == g.blockSearch
	g.mu.Unlock()

	if block {
		close(g.blocked)
		<-g.release
	}
	if g.failList {
		n.Notify(g.failureMsg)
		return []models.Thesis{}
	}
	return []models.Thesis{{ID: 1, Title: search}}
}

func (g *fakeGateway) GetThesis(_ context.Context, _ *session.Session, n gateway.Notifier, _ uint) *models.Thesis {
	if g.thesis == nil {
		n.Notify(g.failureMsg)
	}
	return g.thesis
}

func (g *fakeGateway) SubmitThesis(_ context.Context, _ *session.Session, n gateway.Notifier, upload gateway.ThesisUpload) bool {
	g.mu.Lock()
	g.submissions = append(g.submissions, upload)
	g.mu.Unlock()
	if !g.submitOK {
		n.Notify(g.failureMsg)
	}
	return g.submitOK
}

func (g *fakeGateway) SubmitReview(_ context.Context, _ *session.Session, n gateway.Notifier, _ uint, review models.ReviewRequest) bool {
	g.mu.Lock()
	g.reviews = append(g.reviews, review)
	g.mu.Unlock()
	if !g.reviewOK {
		n.Notify(g.failureMsg)
	}
	return g.reviewOK
}

func (g *fakeGateway) AssignTheses(_ context.Context, _ *session.Session, n gateway.Notifier) bool {
	if !g.assignOK {
		n.Notify(g.failureMsg)
	}
	return g.assignOK
}

func (g *fakeGateway) GetStats(_ context.Context, _ *session.Session, _ gateway.Notifier) *models.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statsCalls++
	return g.stats
}

func (g *fakeGateway) calls() []listCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]listCall(nil), g.listCalls...)
}

// recordingView keeps the last state the controller put on screen.
type recordingView struct {
	mu sync.Mutex

	notifications []string
	navigation    *bool
	user          *models.User
	list          []models.Thesis
	listShown     int
	cleared       bool
	stats         *models.Stats
	closed        []Dialog
}

func (v *recordingView) Notify(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, message)
}

func (v *recordingView) SetNavigation(authenticated bool, user *models.User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.navigation = &authenticated
	v.user = user
}

func (v *recordingView) ShowThesisList(records []models.Thesis) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list = records
	v.listShown++
}

func (v *recordingView) ClearThesisList() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list = nil
	v.cleared = true
}

func (v *recordingView) ShowStats(stats *models.Stats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = stats
}

func (v *recordingView) CloseDialog(dialog Dialog) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = append(v.closed, dialog)
}

func (v *recordingView) shown() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.listShown
}

type fixture struct {
	gw        *fakeGateway
	store     *session.MemoryStore
	sessions  *session.Manager
	publisher *events.MockEventPublisher
	ctrl      *Controller
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := &fakeGateway{
		loginOK:    true,
		registerOK: true,
		submitOK:   true,
		reviewOK:   true,
		assignOK:   true,
		failureMsg: "backend said no",
		stats:      &models.Stats{TotalThesis: 3, CompletedReviews: 1, PendingReviews: 2},
	}
	store := session.NewMemoryStore()
	sessions := session.NewManager(store)
	publisher := events.NewMockEventPublisher(logger)
	ctrl := New(gw, sessions, NewDebouncer(delay), publisher, export.New(time.UTC), logger)
	return &fixture{gw: gw, store: store, sessions: sessions, publisher: publisher, ctrl: ctrl}
}

// issued returns the number of generations handed out so far.
func (f *fixture) issued() uint64 {
	d := f.ctrl.debouncer
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}

func authenticatedSession() *session.Session {
	return &session.Session{ID: "sid-1", Token: "t1", User: &models.User{ID: 1, Username: "alice"}}
}

func allQuery() models.ListQuery {
	return models.ListQuery{Status: models.StatusFilterAll}
}

func TestController_LoginSuccess(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	ctx := context.Background()
	sess := &session.Session{ID: "sid-1"}
	view := &recordingView{}

	err := f.ctrl.Login(ctx, sess, view, models.LoginRequest{Username: "alice", Password: "pw"}, allQuery())
	require.NoError(t, err)

	token, err := f.store.GetToken(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
	user, err := f.store.GetUser(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	require.NotNil(t, view.navigation)
	assert.True(t, *view.navigation)
	assert.Equal(t, 1, view.listShown)
	assert.Equal(t, f.gw.stats, view.stats)
	assert.Equal(t, []Dialog{DialogLogin}, view.closed)
	assert.Equal(t, []string{"t1"}, f.gw.tokensSeen)
	assert.Equal(t, []string{events.EventTypeUserLoggedIn}, f.publisher.EventTypes())
}

func TestController_LoginFailureKeepsDialogOpen(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	f.gw.loginOK = false
	ctx := context.Background()
	sess := &session.Session{ID: "sid-1"}
	view := &recordingView{}

	require.NoError(t, f.ctrl.Login(ctx, sess, view, models.LoginRequest{Username: "alice", Password: "bad"}, allQuery()))

	token, err := f.store.GetToken(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, view.closed)
	assert.Nil(t, view.navigation)
	assert.Empty(t, f.gw.calls())
	assert.Equal(t, []string{"backend said no"}, view.notifications)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestController_Register(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	view := &recordingView{}

	f.ctrl.Register(context.Background(), view, models.RegisterRequest{Username: "bob", Password: "pw", ConfirmPassword: "pw"})

	assert.Equal(t, []Dialog{DialogRegister}, view.closed)
	assert.Equal(t, []string{RegistrationSucceeded}, view.notifications)
	assert.Equal(t, []string{events.EventTypeUserRegistered}, f.publisher.EventTypes())

	f.gw.registerOK = false
	failed := &recordingView{}
	f.ctrl.Register(context.Background(), failed, models.RegisterRequest{Username: "bob"})
	assert.Empty(t, failed.closed)
	assert.Equal(t, []string{"backend said no"}, failed.notifications)
}

func TestController_SubmitThesis(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	view := &recordingView{}
	upload := gateway.ThesisUpload{Title: "Graphs", Content: "abstract"}

	f.ctrl.SubmitThesis(context.Background(), authenticatedSession(), view, upload, allQuery())

	assert.Equal(t, []Dialog{DialogSubmitThesis}, view.closed)
	assert.Equal(t, 1, view.listShown)
	assert.Equal(t, 1, f.gw.statsCalls)
	assert.Equal(t, []string{events.EventTypeThesisSubmitted}, f.publisher.EventTypes())
}

func TestController_SubmitReviewRejectedDoesNotReload(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	f.gw.reviewOK = false
	f.gw.failureMsg = "invalid score"
	view := &recordingView{}

	f.ctrl.SubmitReview(context.Background(), authenticatedSession(), view, 42, "95", "great work", allQuery())

	require.Len(t, f.gw.reviews, 1)
	require.NotNil(t, f.gw.reviews[0].Score)
	assert.Equal(t, json.Number("95"), *f.gw.reviews[0].Score)
	assert.Equal(t, "great work", f.gw.reviews[0].Comments)
	assert.Equal(t, []string{"invalid score"}, view.notifications)
	assert.Empty(t, f.gw.calls())
	assert.Zero(t, f.gw.statsCalls)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestController_SubmitReviewSuccessReloads(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	view := &recordingView{}
	query := models.ListQuery{Search: "graph", Status: models.StatusFilterPending}

	f.ctrl.SubmitReview(context.Background(), authenticatedSession(), view, 42, "150", "", query)

	require.Len(t, f.gw.reviews, 1)
	assert.Equal(t, json.Number("150"), *f.gw.reviews[0].Score)
	assert.Equal(t, []listCall{{search: "graph", status: models.StatusFilterPending}}, f.gw.calls())
	assert.Equal(t, 1, f.gw.statsCalls)
	assert.Equal(t, []string{events.EventTypeReviewSubmitted}, f.publisher.EventTypes())
}

func TestController_Logout(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	ctx := context.Background()
	sess := authenticatedSession()
	require.NoError(t, f.sessions.Save(ctx, sess))
	view := &recordingView{}

	require.NoError(t, f.ctrl.Logout(ctx, sess, view))

	assert.False(t, sess.Authenticated())
	loaded, err := f.sessions.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, loaded.Authenticated())
	assert.Nil(t, loaded.User)

	require.NotNil(t, view.navigation)
	assert.False(t, *view.navigation)
	assert.True(t, view.cleared)
	assert.Empty(t, f.gw.calls())
	assert.Equal(t, []string{events.EventTypeUserLoggedOut}, f.publisher.EventTypes())
}

func TestController_SearchDebouncesKeystrokes(t *testing.T) {
	f := newFixture(t, 500*time.Millisecond)
	sess := authenticatedSession()
	view := &recordingView{}

	var wg sync.WaitGroup
	results := make([]bool, 5)
	for i, text := range []string{"g", "gr", "gra", "grap", "graph"} {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			results[i] = f.ctrl.Search(context.Background(), sess, view, models.ListQuery{Search: text, Status: models.StatusFilterAll})
		}(i, text)

		// Keystrokes reach the debouncer in typing order.
		want := uint64(i + 1)
		require.Eventually(t, func() bool { return f.issued() == want }, time.Second, time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, []listCall{{search: "graph", status: models.StatusFilterAll}}, f.gw.calls())
	assert.Equal(t, []bool{false, false, false, false, true}, results)
	assert.Equal(t, 1, view.shown())
	assert.Equal(t, "graph", view.list[0].Title)
	assert.Zero(t, f.ctrl.debouncer.Pending())
}

func TestController_OneShotSessionsLeaveNoDebounceState(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sess := &session.Session{ID: fmt.Sprintf("anon-%d", i)}
		if i%2 == 0 {
			f.ctrl.FilterStatus(ctx, sess, &recordingView{}, allQuery())
		} else {
			f.ctrl.Search(ctx, sess, &recordingView{}, allQuery())
		}
	}

	assert.Zero(t, f.ctrl.debouncer.Pending())
}

func TestController_SearchCancelled(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, f.ctrl.Search(ctx, authenticatedSession(), &recordingView{}, allQuery()))
	assert.Empty(t, f.gw.calls())
}

func TestController_StaleListResponseDiscarded(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	f.gw.blockSearch = "slow"
	f.gw.blocked = make(chan struct{})
	f.gw.release = make(chan struct{})
	sess := authenticatedSession()
	view := &recordingView{}

	slowDone := make(chan bool)
	go func() {
		slowDone <- f.ctrl.FilterStatus(context.Background(), sess, view, models.ListQuery{Search: "slow", Status: models.StatusFilterAll})
	}()
	<-f.gw.blocked

	assert.True(t, f.ctrl.FilterStatus(context.Background(), sess, view, models.ListQuery{Search: "fast", Status: models.StatusFilterCompleted}))
	close(f.gw.release)

	assert.False(t, <-slowDone)
	assert.Equal(t, 1, view.shown())
	assert.Equal(t, "fast", view.list[0].Title)
}

func TestController_StaleAfterLogout(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	f.gw.blockSearch = "slow"
	f.gw.blocked = make(chan struct{})
	f.gw.release = make(chan struct{})
	ctx := context.Background()
	sess := authenticatedSession()
	view := &recordingView{}

	done := make(chan bool)
	go func() {
		done <- f.ctrl.FilterStatus(ctx, &session.Session{ID: sess.ID, Token: sess.Token}, view, models.ListQuery{Search: "slow"})
	}()
	<-f.gw.blocked

	require.NoError(t, f.ctrl.Logout(ctx, sess, view))
	close(f.gw.release)

	assert.False(t, <-done)
	assert.Zero(t, view.shown())
}

func TestController_RestoreWithoutToken(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	view := &recordingView{}

	f.ctrl.Restore(context.Background(), &session.Session{ID: "anon"}, view, allQuery())

	require.NotNil(t, view.navigation)
	assert.False(t, *view.navigation)
	assert.Empty(t, f.gw.calls())
	assert.Zero(t, f.gw.statsCalls)
	assert.Zero(t, view.shown())
}

func TestController_RestoreWithToken(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	view := &recordingView{}
	query := models.ListQuery{Search: "graph", Status: models.StatusFilterCompleted}

	f.ctrl.Restore(context.Background(), authenticatedSession(), view, query)

	require.NotNil(t, view.navigation)
	assert.True(t, *view.navigation)
	assert.Equal(t, "alice", view.user.Username)
	assert.Equal(t, []listCall{{search: "graph", status: models.StatusFilterCompleted}}, f.gw.calls())
	assert.Equal(t, 1, f.gw.statsCalls)
	assert.Equal(t, f.gw.stats, view.stats)
	assert.Equal(t, 1, view.shown())
}

func TestController_AssignTheses(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	view := &recordingView{}

	f.ctrl.AssignTheses(context.Background(), authenticatedSession(), view, allQuery())

	assert.Len(t, f.gw.calls(), 1)
	assert.Equal(t, 1, f.gw.statsCalls)
	assert.Equal(t, []string{events.EventTypeThesisAssigned}, f.publisher.EventTypes())
}

func TestController_ThesisDetail(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	view := &recordingView{}

	assert.False(t, f.ctrl.ThesisDetail(context.Background(), authenticatedSession(), view, 9))
	assert.Equal(t, []string{"backend said no"}, view.notifications)

	f.gw.thesis = &models.Thesis{ID: 9, Title: "Compilers"}
	assert.True(t, f.ctrl.ThesisDetail(context.Background(), authenticatedSession(), view, 9))
	require.Len(t, view.list, 1)
	assert.Equal(t, uint(9), view.list[0].ID)
}

func TestController_ExportThesisList(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	view := &recordingView{}

	var buf bytes.Buffer
	ok, err := f.ctrl.ExportThesisList(context.Background(), authenticatedSession(), view, allQuery(), &buf)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotZero(t, buf.Len())

	f.gw.failList = true
	buf.Reset()
	ok, err = f.ctrl.ExportThesisList(context.Background(), authenticatedSession(), view, allQuery(), &buf)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, buf.Len())
	assert.Equal(t, []string{"backend said no"}, view.notifications)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		input string
		want  *json.Number
	}{
		{"95", scorePtr("95")},
		{"95.5", scorePtr("95")},
		{"  42 ", scorePtr("42")},
		{"-5", scorePtr("-5")},
		{"+7", scorePtr("7")},
		{"007", scorePtr("7")},
		{"150", scorePtr("150")},
		{"12abc", scorePtr("12")},
		{"99999999999999999999999", scorePtr("99999999999999999999999")},
		{"abc", nil},
		{"", nil},
		{"-", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseScore(tt.input))
		})
	}
}

func scorePtr(v string) *json.Number {
	n := json.Number(v)
	return &n
}
