package service

import (
	"sync"
	"time"

	"github.com/boddenberg/store-portal-bfa-go/internal/infra/cache"
)

// Workspace is the per-device working state of the portal pages: the intake
// form, the directory view and the login in-flight gate.
type Workspace struct {
	Intake    *IntakeState
	Directory *DirectoryState

	loginMu   sync.Mutex
	loggingIn bool
}

func newWorkspace() *Workspace {
	return &Workspace{
		Intake:    NewIntakeState(),
		Directory: NewDirectoryState(),
	}
}

// BeginLogin claims the login gate. It reports false while another login
// from the same device is still running.
func (w *Workspace) BeginLogin() bool {
	w.loginMu.Lock()
	defer w.loginMu.Unlock()
	if w.loggingIn {
		return false
	}
	w.loggingIn = true
	return true
}

// EndLogin releases the login gate.
func (w *Workspace) EndLogin() {
	w.loginMu.Lock()
	w.loggingIn = false
	w.loginMu.Unlock()
}

// Reset discards the form and directory state, e.g. on logout.
func (w *Workspace) Reset() {
	w.Intake.Reset()
	w.Directory.Reset()
}

// Workspaces holds one Workspace per device, evicted after a period of inactivity.
type Workspaces struct {
	cache *cache.InMemory[*Workspace]
}

// NewWorkspaces creates a workspace registry with the given idle TTL.
func NewWorkspaces(ttl time.Duration) *Workspaces {
	return &Workspaces{cache: cache.New[*Workspace](ttl)}
}

// For returns the device's workspace, creating it on first use.
func (ws *Workspaces) For(deviceID string) *Workspace {
	return ws.cache.GetOrCreate(deviceID, newWorkspace)
}

// Len reports how many devices currently hold a workspace.
func (ws *Workspaces) Len() int { return ws.cache.Len() }

// Close stops the eviction loop.
func (ws *Workspaces) Close() { ws.cache.Close() }
