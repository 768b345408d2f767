package keepalive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultCleanupTimeout bounds how long teardown may block shutdown.
const DefaultCleanupTimeout = 5 * time.Second

// ErrCleanupTimeout is returned when resources did not finish releasing in
// time.
var ErrCleanupTimeout = errors.New("cleanup timeout exceeded")

// CleanupManager releases registered resources exactly once, however many
// shutdown paths ask for it.
type CleanupManager struct {
	mu          sync.Mutex
	resources   []CleanupResource
	timeout     time.Duration
	logger      *log.Logger
	cleanupOnce sync.Once
	result      error
}

// CleanupResource is anything holding an OS-level handle.
type CleanupResource interface {
	Cleanup() error
	Name() string
}

// CleanupFunc adapts a function to CleanupResource.
type CleanupFunc struct {
	name string
	fn   func() error
}

func (c *CleanupFunc) Cleanup() error { return c.fn() }

func (c *CleanupFunc) Name() string { return c.name }

// NewCleanupManager creates a manager. A non-positive timeout means
// DefaultCleanupTimeout; logger may be nil.
func NewCleanupManager(timeout time.Duration, logger *log.Logger) *CleanupManager {
	if timeout <= 0 {
		timeout = DefaultCleanupTimeout
	}
	return &CleanupManager{timeout: timeout, logger: logger}
}

// Register adds a resource. Resources are released in reverse order.
func (cm *CleanupManager) Register(resource CleanupResource) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.resources = append(cm.resources, resource)
}

// RegisterFunc registers fn under name.
func (cm *CleanupManager) RegisterFunc(name string, fn func() error) {
	cm.Register(&CleanupFunc{name: name, fn: fn})
}

// Execute releases everything on the first call and returns the same
// joined error on every call.
func (cm *CleanupManager) Execute() error {
	cm.cleanupOnce.Do(func() {
		cm.result = cm.executeWithTimeout()
	})
	return cm.result
}

func (cm *CleanupManager) executeWithTimeout() error {
	cm.mu.Lock()
	resources := make([]CleanupResource, len(cm.resources))
	copy(resources, cm.resources)
	cm.mu.Unlock()

	if len(resources) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cm.timeout)
	defer cancel()

	done := make(chan struct{})
	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	go func() {
		defer close(done)
		for i := len(resources) - 1; i >= 0; i-- {
			resource := resources[i]
			func() {
				defer func() {
					if r := recover(); r != nil {
						record(fmt.Errorf("panic cleaning up %s: %v", resource.Name(), r))
						cm.logf(log.ErrorLevel, "panic during cleanup", "resource", resource.Name(), "panic", r)
					}
				}()
				if err := resource.Cleanup(); err != nil {
					record(fmt.Errorf("cleanup %s: %w", resource.Name(), err))
					cm.logf(log.WarnLevel, "cleanup failed", "resource", resource.Name(), "err", err)
					return
				}
				cm.logf(log.DebugLevel, "released", "resource", resource.Name())
			}()
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		cm.logf(log.WarnLevel, "cleanup timed out, some resources may not have been released", "timeout", cm.timeout)
		record(ErrCleanupTimeout)
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}

func (cm *CleanupManager) logf(level log.Level, msg string, keyvals ...interface{}) {
	if cm.logger != nil {
		cm.logger.Log(level, msg, keyvals...)
	}
}
