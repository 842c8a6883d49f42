// state/state.go
package state

import (
	"errors"
	"sync"
)

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// Machine 是带转换条件的有限状态机。只有通过 AddTransition 注册过的转换才被允许
type Machine[S comparable] struct {
	current     S
	transitions map[S]map[S]func() bool // fromState -> toState -> condition
	onEnter     map[S][]func(from S)
	onExit      map[S][]func(to S)
	mutex       sync.RWMutex
}

// NewMachine 创建状态机
func NewMachine[S comparable](initial S) *Machine[S] {
	return &Machine[S]{
		current:     initial,
		transitions: make(map[S]map[S]func() bool),
		onEnter:     make(map[S][]func(from S)),
		onExit:      make(map[S][]func(to S)),
	}
}

// AddTransition 注册一个转换，condition 为 nil 表示无条件
func (sm *Machine[S]) AddTransition(from, to S, condition func() bool) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if _, exists := sm.transitions[from]; !exists {
		sm.transitions[from] = make(map[S]func() bool)
	}
	sm.transitions[from][to] = condition
}

// OnEnter registers a hook that runs after the machine enters s.
func (sm *Machine[S]) OnEnter(s S, fn func(from S)) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.onEnter[s] = append(sm.onEnter[s], fn)
}

// OnExit registers a hook that runs before the machine leaves s.
func (sm *Machine[S]) OnExit(s S, fn func(to S)) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.onExit[s] = append(sm.onExit[s], fn)
}

// Can reports whether a transition to `to` is registered and its condition holds.
func (sm *Machine[S]) Can(to S) bool {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.allowed(to)
}

func (sm *Machine[S]) allowed(to S) bool {
	conditions, exists := sm.transitions[sm.current]
	if !exists {
		return false
	}
	condition, exists := conditions[to]
	if !exists {
		return false
	}
	return condition == nil || condition()
}

// ChangeState 切换状态。hooks 在锁外执行，可以读取 Current
func (sm *Machine[S]) ChangeState(to S) error {
	sm.mutex.Lock()
	if !sm.allowed(to) {
		sm.mutex.Unlock()
		return ErrTransitionNotAllowed
	}
	from := sm.current
	exits := sm.onExit[from]
	enters := sm.onEnter[to]
	sm.current = to
	sm.mutex.Unlock()

	for _, fn := range exits {
		fn(to)
	}
	for _, fn := range enters {
		fn(from)
	}
	return nil
}

// Current 当前状态
func (sm *Machine[S]) Current() S {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.current
}
