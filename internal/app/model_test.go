package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/config"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/session"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
)

const testSecret = "sk-live-0123456789abcdef"

// backend serves the REST endpoints the app drives.
type backend struct {
	statsDown    atomic.Bool
	unauthorized atomic.Bool
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	if b.unauthorized.Load() && path != "/users/login" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token is not valid"}`))
		return
	}

	switch {
	case path == "/users/login":
		w.Write([]byte(`{"token":"opaque-token","user":{"_id":"u1","name":"Dev","email":"dev@example.com"}}`))
	case path == "/users/profile":
		w.Write([]byte(`{"user":{"_id":"u1","name":"Dev Renamed","email":"dev@example.com"}}`))
	case path == "/usage/developer/stats":
		if b.statsDown.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"todayCalls":120,"monthlyUsage":3400,"activeModels":6}`))
	case path == "/usage/my-usage":
		w.Write([]byte(`[]`))
	case path == "/keys/my-keys":
		w.Write([]byte(`{"api_keys":[{"_id":"k1","key":"` + testSecret + `","status":"active"}]}`))
	case path == "/keys" && r.Method == http.MethodPost:
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"api_key":{"_id":"k2","key":"` + testSecret + `"}}`))
	case strings.HasSuffix(path, "/revoke"):
		w.Write([]byte(`{"message":"revoked"}`))
	case path == "/models/developer/my-models":
		w.Write([]byte(`{"models":[{"_id":"m1","name":"GPT-4"}]}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestManager(t *testing.T) (*services.Manager, *backend) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:     srv.URL + "/api",
		DatabasePath:   filepath.Join(t.TempDir(), "test.db"),
		RequestTimeout: 2 * time.Second,
		QuotaTotal:     50000,
	}
	mgr, err := services.NewManager(cfg,
		services.WithKVStore(session.NewMemoryStore()),
		services.WithNotifier(func(string, string) error { return nil }),
	)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr, b
}

// signedIn returns a model whose manager logged in and loaded initial data.
func signedIn(t *testing.T) (*Model, *services.Manager, *backend) {
	t.Helper()
	mgr, b := newTestManager(t)
	model := NewModel(mgr)

	res := loginCmd(mgr, models.Credentials{Email: "dev@example.com", Password: "secret1"})()
	model.Update(res)
	if !model.state.IsAuthenticated() {
		t.Fatal("model should be authenticated after login")
	}
	model.Update(loadInitialDataCmd(mgr)())
	return model, mgr, b
}

// stubTab records what it receives.
type stubTab struct {
	msgs      []tea.Msg
	view      string
	width     int
	height    int
	capturing bool
}

func (s *stubTab) Init() tea.Cmd { return nil }

func (s *stubTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	s.msgs = append(s.msgs, msg)
	return s, nil
}

func (s *stubTab) View() string { return s.view }

func (s *stubTab) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *stubTab) ShortHelp() []key.Binding {
	return []key.Binding{key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stub action"))}
}

func (s *stubTab) FullHelp() [][]key.Binding { return [][]key.Binding{s.ShortHelp()} }

func (s *stubTab) CapturingInput() bool { return s.capturing }

func (s *stubTab) received(match func(tea.Msg) bool) bool {
	for _, m := range s.msgs {
		if match(m) {
			return true
		}
	}
	return false
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func notificationFrom(t *testing.T, cmds []tea.Cmd) AddNotificationMsg {
	t.Helper()
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		if n, ok := cmd().(AddNotificationMsg); ok {
			return n
		}
	}
	t.Fatal("no notification command returned")
	return AddNotificationMsg{}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabAnalytics {
		t.Error("Default tab should be Analytics")
	}
	if len(model.tabs) != 4 {
		t.Errorf("Should have 4 tabs placeholder, got %d", len(model.tabs))
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	if cmd := model.Init(); cmd == nil {
		t.Error("Init returned nil command")
	}
	if model.state.IsInitialLoading() {
		t.Error("signed-out model should not wait for initial data")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	login := &stubTab{}
	model.SetLogin(login)

	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}

	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if login.width != 100 || login.height != 45 {
		t.Errorf("login size = %dx%d, want 100x45", login.width, login.height)
	}
}

func TestModel_Update_TabSwitch(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 100
	model.height = 50

	model.Update(TabSwitchMsg{Tab: TabModels})
	if model.activeTab != TabModels {
		t.Errorf("ActiveTab = %v, want Models", model.activeTab)
	}

	cmd, handled := model.handleKeyMsg(runeKey('2'))
	if !handled || cmd == nil {
		t.Fatal("Key '2' should be handled and return a command")
	}
	if model.activeTab != TabKeys {
		t.Errorf("ActiveTab = %v, want API Keys", model.activeTab)
	}
	if msg, ok := cmd().(TabSwitchMsg); !ok || msg.Tab != TabKeys {
		t.Errorf("cmd() = %#v, want TabSwitchMsg{TabKeys}", msg)
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.activeTab != TabAnalytics {
		t.Errorf("ActiveTab = %v after shift+tab, want Analytics", model.activeTab)
	}
	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.activeTab != TabInfo {
		t.Errorf("ActiveTab = %v after wrap, want Info", model.activeTab)
	}
}

func TestModel_RefreshKeyFollowsTab(t *testing.T) {
	tests := []struct {
		tab  TabID
		want string
	}{
		{TabAnalytics, ResourceUsage},
		{TabKeys, ResourceKeys},
		{TabModels, ResourceCatalog},
		{TabInfo, "profile"},
	}

	for _, tt := range tests {
		t.Run(tt.tab.String(), func(t *testing.T) {
			model := NewModel(nil)
			model.activeTab = tt.tab
			cmd, handled := model.handleKeyMsg(runeKey('r'))
			if !handled {
				t.Fatal("refresh key should be handled")
			}
			msg, ok := cmd().(RefreshMsg)
			if !ok || msg.Resource != tt.want {
				t.Errorf("cmd() = %#v, want RefreshMsg{%q}", msg, tt.want)
			}
		})
	}
}

func TestModel_LoginScreenCapturesKeys(t *testing.T) {
	model := NewModel(nil)
	login := &stubTab{view: "LOGIN SCREEN"}
	model.SetLogin(login)
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	_, cmd := model.Update(runeKey('q'))
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Fatal("'q' must reach the login form instead of quitting")
		}
	}
	if !login.received(func(m tea.Msg) bool { k, ok := m.(tea.KeyMsg); return ok && k.String() == "q" }) {
		t.Error("login screen should receive the key")
	}

	if !strings.Contains(model.View(), "LOGIN SCREEN") {
		t.Error("View should render the login screen while signed out")
	}

	cmd, handled := model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !handled {
		t.Fatal("ctrl+c should always be handled")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestModel_CapturingTabKeepsKeys(t *testing.T) {
	model := NewModel(nil)
	model.state.SetSession(&models.Session{Token: "t"})
	keysTab := &stubTab{capturing: true}
	model.SetTabs([]Tab{nil, keysTab, nil, nil})
	model.activeTab = TabKeys

	model.Update(runeKey('1'))
	if model.activeTab != TabKeys {
		t.Error("tab switch keys must not fire while a tab captures input")
	}
	if len(keysTab.msgs) != 1 {
		t.Errorf("tab got %d messages, want 1", len(keysTab.msgs))
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	if view := model.View(); !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model.ready = true
	model.width = 120
	model.height = 24
	model.state.SetSession(&models.Session{Token: "t", User: models.Identity{Name: "Dev"}})

	view := model.View()
	if !strings.Contains(view, "Analytics") {
		t.Error("View should show Analytics tab")
	}
	if !strings.Contains(view, "not yet implemented") {
		t.Error("View should show placeholder text")
	}
	if !strings.Contains(view, "Dev") {
		t.Error("navbar should show the signed-in user")
	}
}

func TestModel_Help(t *testing.T) {
	model := NewModel(nil)
	model.ready = true
	model.width = 80
	model.height = 40
	model.SetTabs([]Tab{&stubTab{}, nil, nil, nil})

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}

	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}
	if !strings.Contains(view, "stub action") {
		t.Error("help should list the active tab's bindings")
	}

	model.handleKeyMsg(runeKey('?'))
	if model.showHelp {
		t.Error("showHelp should be false after toggle")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := NewModel(nil)

	model.Update(AddNotificationMsg{Message: "Test Note", Type: NotificationInfo})
	notifs := model.state.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}

	model.ready = true
	model.width = 80
	model.height = 24
	if view := model.View(); !strings.Contains(view, "Test Note") {
		t.Error("View should show notification")
	}

	model.Update(RemoveNotificationMsg{ID: notifs[0].ID})
	if len(model.state.GetNotifications()) != 0 {
		t.Error("notification should be removed")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := NewModel(nil)
	model.state.SetSession(&models.Session{Token: "t"})

	res := usage.Result{Tier: usage.TierPreferred, Stats: models.UsageStats{TodayCalls: 7}}
	model.handleServiceEvent(services.UsageUpdatedEvent{Result: res})
	if got := model.state.GetUsage(); got == nil || got.Stats.TodayCalls != 7 {
		t.Errorf("usage = %+v, want TodayCalls 7", got)
	}

	keys := []models.APIKey{{ID: "k1", Status: models.KeyActive}}
	model.handleServiceEvent(services.KeysChangedEvent{Keys: keys})
	if len(model.state.GetKeys()) != 1 {
		t.Error("keys should be updated")
	}

	cmd := model.handleServiceEvent(services.ErrorEvent{Service: "usage", Error: errors.New("boom")})
	if cmd == nil {
		t.Fatal("Error event should trigger notification command")
	}
	if n := cmd().(AddNotificationMsg); n.Type != NotificationError || !strings.Contains(n.Message, "[usage]") {
		t.Errorf("notification = %+v", n)
	}
}

func TestModel_SessionEndedShowsLogin(t *testing.T) {
	model := NewModel(nil)
	model.state.SetSession(&models.Session{Token: "t"})
	model.state.SetUsage(usage.Result{})
	model.activeTab = TabInfo

	cmd := model.handleServiceEvent(services.SessionChangedEvent{Reason: "Session expired. Please log in again."})

	if model.state.IsAuthenticated() {
		t.Error("state should be signed out")
	}
	if model.state.GetUsage() != nil {
		t.Error("account data should be cleared")
	}
	if model.activeTab != TabAnalytics {
		t.Error("active tab should reset")
	}
	if cmd == nil {
		t.Fatal("expected a warning notification")
	}
	if n := cmd().(AddNotificationMsg); n.Type != NotificationWarning || !strings.Contains(n.Message, "expired") {
		t.Errorf("notification = %+v", n)
	}

	if cmd := model.handleServiceEvent(services.SessionChangedEvent{Reason: "again"}); cmd != nil {
		t.Error("a second sign-out should be a no-op")
	}
}

func TestModel_Update_LoadingMessages(t *testing.T) {
	model := NewModel(nil)

	model.Update(StartLoadingMsg{Resource: ResourceKeys})
	if !model.state.Loading.Keys {
		t.Error("Loading.Keys should be true")
	}

	model.Update(StopLoadingMsg{Resource: ResourceKeys})
	if model.state.Loading.Keys {
		t.Error("Loading.Keys should be false")
	}

	// Without a manager, refreshes are ignored.
	for _, r := range []string{"all", ResourceUsage, ResourceKeys, ResourceCatalog, "profile"} {
		model.Update(RefreshMsg{Resource: r})
	}
	if model.state.Loading.Usage {
		t.Error("refresh without services should not start loading")
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestModel_LoginLoadsData(t *testing.T) {
	model, mgr, _ := signedIn(t)

	if model.state.IsInitialLoading() {
		t.Error("initial loading should be finished")
	}
	res := model.state.GetUsage()
	if res == nil {
		t.Fatal("usage should be loaded")
	}
	if res.Tier != usage.TierPreferred || res.Stats.Percent() != 7 || res.Stats.ActiveModels != 6 {
		t.Errorf("usage = %+v", res)
	}
	if keys := model.state.GetKeys(); len(keys) != 1 || keys[0].ID != "k1" {
		t.Errorf("keys = %+v", keys)
	}
	if cat := model.state.GetCatalog(); cat == nil || cat.Catalog.Len() != 1 {
		t.Errorf("catalog = %+v", cat)
	}
	if len(model.state.GetHistory()) != 1 {
		t.Errorf("history = %d snapshots, want 1", len(model.state.GetHistory()))
	}
	if model.state.GetKeySummary().Active != 1 {
		t.Error("key summary should come from the manager")
	}
	if !mgr.IsAuthenticated() {
		t.Error("manager should hold the session")
	}
}

func TestModel_LoginValidationError(t *testing.T) {
	mgr, _ := newTestManager(t)
	model := NewModel(mgr)

	res := loginCmd(mgr, models.Credentials{Email: "not-an-email", Password: "secret1"})()
	msg, ok := res.(AuthResultMsg)
	if !ok || msg.Error == nil {
		t.Fatalf("res = %#v, want failed AuthResultMsg", res)
	}

	login := &stubTab{}
	model.SetLogin(login)
	model.Update(msg)

	if model.state.IsAuthenticated() {
		t.Error("failed login must not authenticate")
	}
	if !login.received(func(m tea.Msg) bool { _, ok := m.(AuthResultMsg); return ok }) {
		t.Error("login screen should receive the result")
	}
	if text := ErrorText(msg.Error); !strings.Contains(strings.ToLower(text), "email") {
		t.Errorf("ErrorText = %q, want an email message", text)
	}
}

func TestModel_StaleUsageDiscarded(t *testing.T) {
	model, mgr, b := signedIn(t)

	b.statsDown.Store(true)
	stale := loadUsageCmd(mgr)().(UsageLoadedMsg)
	b.statsDown.Store(false)
	fresh := loadUsageCmd(mgr)().(UsageLoadedMsg)

	model.Update(stale)
	if model.state.GetUsage().Tier != usage.TierPreferred {
		t.Error("superseded response must not touch state")
	}

	model.Update(fresh)
	if model.state.GetUsage().Tier != usage.TierPreferred {
		t.Error("current response should be applied")
	}
	if model.state.IsLoading(ResourceUsage) {
		t.Error("usage loading should be cleared")
	}
}

func TestModel_UsageRefreshKeepsInitialLoad(t *testing.T) {
	mgr, _ := newTestManager(t)
	model := NewModel(mgr)
	model.Update(loginCmd(mgr, models.Credentials{Email: "dev@example.com", Password: "secret1"})())

	// A usage refresh issued while the initial load is still pending.
	initial := loadInitialDataCmd(mgr)().(InitialLoadMsg)
	refresh := loadUsageCmd(mgr)().(UsageLoadedMsg)

	model.Update(refresh)
	model.Update(initial)

	if got := len(model.state.GetKeys()); got != 1 {
		t.Fatalf("keys = %d, want 1", got)
	}
	if model.state.GetCatalog() == nil {
		t.Error("catalog from the initial load should be applied")
	}
	if got := model.state.GetUsage().ResolvedAt; !got.Equal(refresh.Result.ResolvedAt) {
		t.Errorf("usage ResolvedAt = %v, want the newer refresh %v", got, refresh.Result.ResolvedAt)
	}
}

func TestModel_DerivedUsageApplied(t *testing.T) {
	model, mgr, b := signedIn(t)

	b.statsDown.Store(true)
	model.Update(loadUsageCmd(mgr)())

	res := model.state.GetUsage()
	if res.Tier != usage.TierDerived {
		t.Fatalf("Tier = %v, want derived", res.Tier)
	}
	if !res.ActiveModelsEstimated || res.Stats.ActiveModels != usage.PlaceholderActiveModels {
		t.Errorf("stats = %+v, want placeholder active models", res.Stats)
	}
}

func TestModel_KeyLifecycle(t *testing.T) {
	model, mgr, _ := signedIn(t)

	_, cmd := model.Update(createKeyCmd(mgr, models.ModelSelection{ModelID: "m1"})())
	if keys := model.state.GetKeys(); len(keys) != 2 {
		t.Fatalf("keys = %d, want 2", len(keys))
	}
	if cmd == nil {
		t.Fatal("create should notify")
	}

	model.Update(revokeKeyCmd(mgr, "k1")())
	for _, k := range model.state.GetKeys() {
		if k.ID == "k1" && k.IsActive() {
			t.Error("k1 should be inactive after revoke")
		}
	}
	if s := model.state.GetKeySummary(); s.Inactive != 1 || s.Active != 1 {
		t.Errorf("summary = %+v", s)
	}
	events := model.state.GetKeyEvents()
	if len(events) != 2 {
		t.Fatalf("key events = %d, want 2", len(events))
	}
	for _, e := range events {
		if strings.Contains(e.Masked, testSecret) {
			t.Error("key events must not hold the full secret")
		}
	}

	cmds := model.handleAppMsg(regenerateKeyCmd(mgr, "k2")())
	if n := notificationFrom(t, cmds); n.Type != NotificationWarning {
		t.Errorf("regenerate notification = %+v, want warning", n)
	}
}

func TestModel_CreateKeyFailureKeepsState(t *testing.T) {
	model, mgr, b := signedIn(t)

	b.unauthorized.Store(true)
	cmds := model.handleAppMsg(createKeyCmd(mgr, models.ModelSelection{})())
	if n := notificationFrom(t, cmds); n.Type != NotificationError {
		t.Errorf("notification = %+v, want error", n)
	}
	if len(model.state.GetKeys()) != 1 {
		t.Error("failed create must not change the key list")
	}
	if mgr.IsAuthenticated() {
		t.Error("a rejected token should end the session")
	}
}

func TestModel_ProfileLoaded(t *testing.T) {
	model, mgr, _ := signedIn(t)

	model.Update(loadProfileCmd(mgr)())
	if got := model.state.GetSession().User.Name; got != "Dev Renamed" {
		t.Errorf("Name = %q, want Dev Renamed", got)
	}
}

func TestModel_LogoutCancelsInFlight(t *testing.T) {
	model, mgr, _ := signedIn(t)

	ticket, ctx := mgr.Tracker().Begin(gateway.ScopeUsage)
	if err := mgr.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if ctx.Err() != context.Canceled {
		t.Error("logout should cancel in-flight requests")
	}

	model.Update(UsageLoadedMsg{Ticket: ticket, Result: usage.Result{Tier: usage.TierStatic}})
	if model.state.GetUsage().Tier == usage.TierStatic {
		t.Error("canceled response must be discarded")
	}
}

func TestErrorText(t *testing.T) {
	if got := ErrorText(&services.FormError{Field: "Email", Message: "Email is invalid"}); got != "Email is invalid" {
		t.Errorf("ErrorText(FormError) = %q", got)
	}
	if got := ErrorText(errors.New("plain")); got != "plain" {
		t.Errorf("ErrorText(plain) = %q", got)
	}
}

func TestTabID_String(t *testing.T) {
	tests := map[TabID]string{
		TabAnalytics: "Analytics",
		TabKeys:      "API Keys",
		TabModels:    "Models",
		TabInfo:      "Info",
		TabID(999):   "Unknown",
	}
	for id, want := range tests {
		if got := id.String(); got != want {
			t.Errorf("TabID(%d).String() = %q, want %q", id, got, want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) != 4 {
		t.Errorf("FullHelp has %d rows, want 4", len(km.FullHelp()))
	}
}
