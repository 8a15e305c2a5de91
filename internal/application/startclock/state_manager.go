package startclock

import (
	"sync"

	"github.com/penwyp/go-start-clock/internal/core/model"
)

// StateManager holds what the display reads: the last computed frame and
// the interaction state. The tick loop writes, the renderer reads.
type StateManager struct {
	mu sync.RWMutex

	view             model.ClockView
	interactionState model.InteractionState
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{}
}

// GetView returns a copy of the last computed frame
func (sm *StateManager) GetView() model.ClockView {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.view
}

// SetView replaces the frame
func (sm *StateManager) SetView(view model.ClockView) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.view = view
}

// GetLoadingState returns current loading state and message
func (sm *StateManager) GetLoadingState() (bool, string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.interactionState.IsLoading, sm.interactionState.LoadingMessage
}

// SetLoadingState updates loading state and message
func (sm *StateManager) SetLoadingState(isLoading bool, message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.interactionState.IsLoading = isLoading
	sm.interactionState.LoadingMessage = message
}

// GetInteractionState returns current interaction state
func (sm *StateManager) GetInteractionState() model.InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.interactionState
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*model.InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	updateFunc(&sm.interactionState)
}
