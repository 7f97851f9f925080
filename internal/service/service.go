/*
battery-runtime - Primary battery runtime estimation.
Copyright (C) 2025, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"runtime"
	"strings"

	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/TheCacophonyProject/battery-runtime/internal/estimate"
	"github.com/TheCacophonyProject/battery-runtime/internal/render"
	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"
)

const (
	dbusName = "org.cacophony.BatteryRuntime"
	dbusPath = "/org/cacophony/BatteryRuntime"
)

type service struct {
	store *curves.Store
	conf  *config.Config
}

func startService(store *curves.Store, conf *config.Config) error {
	log.Info("Starting battery runtime service")
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("name already taken")
	}

	s := &service{
		store: store,
		conf:  conf,
	}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")
	return nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

/*
dbus-send --system --print-reply --dest=org.cacophony.BatteryRuntime /org/cacophony/BatteryRuntime \
org.cacophony.BatteryRuntime.Estimate \
string:lithium-metal int32:16000 double:-35 double:1500 double:2000 double:0.06
*/

// Estimate runs the generalized model and returns the estimate as JSON.
// An empty chemistry uses default-chemistry from the config.
func (s *service) Estimate(chemistry string, capacity int32, temp, load, loadDuration, sleep float64) (string, *dbus.Error) {
	return s.estimate(estimate.Request{
		Chemistry:             chemistry,
		RatedCapacityMAh:      int(capacity),
		OperatingTempC:        temp,
		LoadCurrentMA:         load,
		LoadDurationPerDaySec: &loadDuration,
		SleepCurrentMA:        sleep,
	})
}

// EstimateLithiumOnly runs the lithium-only model and returns the estimate as JSON.
func (s *service) EstimateLithiumOnly(capacity int32, temp, load, loadDuration, sleep float64) (string, *dbus.Error) {
	return s.estimate(estimate.Request{
		Chemistry:             "lithium-metal",
		RatedCapacityMAh:      int(capacity),
		OperatingTempC:        temp,
		LoadCurrentMA:         load,
		LoadDurationPerDaySec: &loadDuration,
		SleepCurrentMA:        sleep,
		LithiumOnly:           true,
	})
}

func (s *service) estimate(req estimate.Request) (string, *dbus.Error) {
	report, err := estimate.Compute(req.WithDefaults(s.conf), s.store.Table(), log)
	if err != nil {
		log.Debug("Estimate failed: ", err)
		return "", makeDbusError("Estimate", errors.New(render.ErrorMessage(err)))
	}
	if s.conf.ReportEvents {
		if err := estimate.ReportEvent(report); err != nil {
			log.Error("error reporting event: ", err)
		}
	}

	var buf bytes.Buffer
	if err := render.JSON(&buf, report); err != nil {
		return "", makeDbusError("Estimate", err)
	}
	return buf.String(), nil
}

type curvesReply struct {
	Checksum string   `json:"checksum"`
	Keys     []string `json:"keys"`
	Points   int      `json:"points"`
}

// Curves describes the loaded reference curves as JSON.
func (s *service) Curves() (string, *dbus.Error) {
	table := s.store.Table()
	reply := curvesReply{Checksum: table.ChecksumString(), Points: table.Len()}
	for _, k := range table.Keys() {
		reply.Keys = append(reply.Keys, k.String())
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return "", dbusErr(err)
	}
	return string(data), nil
}

func makeDbusError(name string, err error) *dbus.Error {
	return &dbus.Error{
		Name: dbusName + "." + name,
		Body: []interface{}{err.Error()},
	}
}

func dbusErr(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	return makeDbusError(getCallerName(), err)
}

func getCallerName() string {
	fpcs := make([]uintptr, 1)
	n := runtime.Callers(3, fpcs)
	if n == 0 {
		return ""
	}
	caller := runtime.FuncForPC(fpcs[0] - 1)
	if caller == nil {
		return ""
	}
	funcNames := strings.Split(caller.Name(), ".")
	return funcNames[len(funcNames)-1]
}
