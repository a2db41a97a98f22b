package backend

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/kopki-go/common"
)

// Driver opens Backends of one BackendType.
// Driver implementations register themselves from an init function, so a backend becomes
// available by importing its package.
type Driver interface {
	// Type returns the backend type this driver opens.
	Type() BackendType

	// Open acquires an adapter and device.
	//
	// Parameters:
	//   - opts: the resolved backend options
	//
	// Returns:
	//   - Backend: the opened backend
	//   - error: error wrapping common.ErrDeviceUnavailable if no suitable device exists
	Open(opts Options) (Backend, error)
}

var (
	mu      sync.Mutex
	drivers = make([]Driver, 0, 2)
)

// Register registers a Driver. A driver with the same type is replaced.
//
// Parameters:
//   - drv: the driver to register
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Type() == drv.Type() {
			drivers[i] = drv
			common.Logger().Warn("backend driver replaced", "type", drv.Type().String())
			return
		}
	}
	drivers = append(drivers, drv)
	common.Logger().Debug("backend driver registered", "type", drv.Type().String())
}

// Drivers returns a copy of the registered drivers.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Open opens a Backend of the given type using the registered driver.
//
// Parameters:
//   - t: the backend type to open
//   - opts: functional options applied over DefaultOptions
//
// Returns:
//   - Backend: the opened backend
//   - error: error wrapping common.ErrDeviceUnavailable if no driver of that type is registered or it failed to open
func Open(t BackendType, opts ...BackendBuilderOption) (Backend, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var drv Driver
	for _, d := range Drivers() {
		if d.Type() == t {
			drv = d
			break
		}
	}
	if drv == nil {
		return nil, fmt.Errorf("backend %s is not registered: %w", t, common.ErrDeviceUnavailable)
	}

	b, err := drv.Open(o)
	if err != nil {
		common.Logger().Error("failed to open backend", "type", t.String(), "error", err)
		return nil, err
	}
	common.Logger().Info("backend opened", "type", t.String(), "adapter", b.AdapterInfo())
	return b, nil
}
