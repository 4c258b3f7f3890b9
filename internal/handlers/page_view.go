package handlers

import (
	"sync"

	"github.com/SAP-F-2025/thesis-review-portal/internal/controller"
	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/render"
)

// pageView collects what the controller changed during one request. It is
// turned into either a full page or a viewUpdate for the browser script.
type pageView struct {
	mu sync.Mutex

	notifications []string

	navigationSet bool
	authenticated bool
	user          *models.User

	records     []models.Thesis
	listShown   bool
	listCleared bool

	stats  *models.Stats
	closed []controller.Dialog
}

var _ controller.View = (*pageView)(nil)

func newPageView() *pageView {
	return &pageView{}
}

func (v *pageView) Notify(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, message)
}

func (v *pageView) SetNavigation(authenticated bool, user *models.User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.navigationSet = true
	v.authenticated = authenticated
	v.user = user
}

func (v *pageView) ShowThesisList(records []models.Thesis) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = records
	v.listShown = true
	v.listCleared = false
}

func (v *pageView) ClearThesisList() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = nil
	v.listShown = false
	v.listCleared = true
}

func (v *pageView) ShowStats(stats *models.Stats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = stats
}

func (v *pageView) CloseDialog(dialog controller.Dialog) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = append(v.closed, dialog)
}

func (v *pageView) Notifications() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.notifications...)
}

// navigationUpdate mirrors the nav bar state.
type navigationUpdate struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	IsExpert      bool   `json:"is_expert"`
}

// viewUpdate is the JSON answer to actions and fragment requests. Absent
// fields leave that part of the page untouched.
type viewUpdate struct {
	Notifications []string            `json:"notifications,omitempty"`
	Navigation    *navigationUpdate   `json:"navigation,omitempty"`
	ThesisList    *string             `json:"thesis_list,omitempty"`
	ClearList     bool                `json:"clear_list,omitempty"`
	Stats         *string             `json:"stats,omitempty"`
	CloseDialogs  []controller.Dialog `json:"close_dialogs,omitempty"`
}

func (v *pageView) update(r *render.Renderer) (viewUpdate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	u := viewUpdate{
		Notifications: v.notifications,
		ClearList:     v.listCleared,
		CloseDialogs:  v.closed,
	}
	if v.navigationSet {
		nav := &navigationUpdate{Authenticated: v.authenticated}
		if v.user != nil {
			nav.Username = v.user.Username
			nav.IsExpert = v.user.IsExpert
		}
		u.Navigation = nav
	}
	if v.listShown {
		html, err := r.ThesisList(v.records)
		if err != nil {
			return viewUpdate{}, err
		}
		list := string(html)
		u.ThesisList = &list
	}
	if v.stats != nil {
		html, err := r.Stats(v.stats)
		if err != nil {
			return viewUpdate{}, err
		}
		stats := string(html)
		u.Stats = &stats
	}
	return u, nil
}

func (v *pageView) page(r *render.Renderer, query models.ListQuery) (render.Page, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	page := render.Page{
		Authenticated: v.authenticated,
		User:          v.user,
		Query:         query,
		Stats:         v.stats,
		Notifications: v.notifications,
	}
	if v.listShown {
		html, err := r.ThesisList(v.records)
		if err != nil {
			return render.Page{}, err
		}
		page.ThesisList = html
	}
	return page, nil
}
