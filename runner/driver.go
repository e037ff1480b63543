/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-hachi.
	go-hachi is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-hachi is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-hachi. If not, see <http://www.gnu.org/licenses/>.
*/

package runner

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Francesco149/go-hachi/v2/hachi"
)

// A Driver is an interface through which the runner performs platform
// specific calls.
// Drivers should be registered by the RegisterDriver function in init().
type Driver interface {
	// Called before the runner starts executing the program.
	OnInit(c *hachi.Chip8) error
	// Called on every tick before any instruction runs, should be used for
	// input polling and similar tasks.
	OnUpdate(c *hachi.Chip8)
	// Called when the program modified the screen.
	UpdateScreen(c *hachi.Chip8)
	// Plays a beeping sound (this will be called every 1/60th of a second
	// while the sound timer is non-zero)
	Beep()
	// Returns custom data that can be retrieved through the runner by
	// calling GetDriverData()
	GetData(key string) interface{}
	// Sets custom data that can be set through the runner by
	// calling SetDriverData()
	SetData(key string, value interface{}) error
}

// A Looper is a driver that needs to own the main loop, usually because its
// library only calls back into the program from its own event loop.
// Loop must call tick once per frame until tick returns an error or the
// user quits, in which case it returns nil.
type Looper interface {
	Loop(tick func() error) error
}

// -----------------------------------------------------------------------------

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver registers a driver to a name. The driver can then be used
// by passing its name to New.
func RegisterDriver(name string, drv Driver) error {
	driversMu.Lock()
	defer driversMu.Unlock()
	if drivers[name] != nil {
		return fmt.Errorf("Driver %s already exists.", name)
	}
	drivers[name] = drv
	return nil
}

// UnregisterDriver unloads a previously registered driver.
func UnregisterDriver(name string) error {
	driversMu.Lock()
	defer driversMu.Unlock()
	if drivers[name] == nil {
		return fmt.Errorf("Driver %s does not exist.", name)
	}
	delete(drivers, name)
	return nil
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupDriver(name string) Driver {
	driversMu.RLock()
	defer driversMu.RUnlock()
	return drivers[name]
}

// -----------------------------------------------------------------------------

// A NullDriver is the default driver, which ignores all calls. It is used to
// run programs headless.
type NullDriver struct{}

func (d NullDriver) OnInit(c *hachi.Chip8) error    { return nil }
func (d NullDriver) OnUpdate(c *hachi.Chip8)        {}
func (d NullDriver) UpdateScreen(c *hachi.Chip8)    {}
func (d NullDriver) Beep()                          {}
func (d NullDriver) GetData(key string) interface{} { return nil }
func (d NullDriver) SetData(key string, value interface{}) error {
	return fmt.Errorf("This driver has no settable data.")
}

func init() {
	if err := RegisterDriver("null", NullDriver{}); err != nil {
		panic(err)
	}
}
