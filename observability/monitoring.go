// Package observability aggregates runtime counters for the telemetry
// report. Counters are atomic; anything hot increments without locking.
package observability

import (
	"os"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"
)

// Stats is one point-in-time view of the counters.
type Stats struct {
	Connects      uint64
	Disconnects   uint64
	OpsAppended   uint64
	OpsRejected   uint64
	Undos         uint64
	Redos         uint64
	Clears        uint64
	Broadcasts    uint64
	DroppedFrames uint64
	CursorsMuted  uint64
}

// Monitor collects counters from every layer of the server. Safe for
// concurrent use.
type Monitor struct {
	connects      atomic.Uint64
	disconnects   atomic.Uint64
	opsAppended   atomic.Uint64
	opsRejected   atomic.Uint64
	undos         atomic.Uint64
	redos         atomic.Uint64
	clears        atomic.Uint64
	broadcasts    atomic.Uint64
	droppedFrames atomic.Uint64
	cursorsMuted  atomic.Uint64
}

func NewMonitor() *Monitor { return &Monitor{} }

func (m *Monitor) IncrConnect()      { m.connects.Add(1) }
func (m *Monitor) IncrDisconnect()   { m.disconnects.Add(1) }
func (m *Monitor) IncrAppended()     { m.opsAppended.Add(1) }
func (m *Monitor) IncrRejected()     { m.opsRejected.Add(1) }
func (m *Monitor) IncrUndo()         { m.undos.Add(1) }
func (m *Monitor) IncrRedo()         { m.redos.Add(1) }
func (m *Monitor) IncrClear()        { m.clears.Add(1) }
func (m *Monitor) IncrBroadcast()    { m.broadcasts.Add(1) }
func (m *Monitor) IncrDroppedFrame() { m.droppedFrames.Add(1) }
func (m *Monitor) IncrCursorMuted()  { m.cursorsMuted.Add(1) }

func (m *Monitor) Snapshot() Stats {
	return Stats{
		Connects:      m.connects.Load(),
		Disconnects:   m.disconnects.Load(),
		OpsAppended:   m.opsAppended.Load(),
		OpsRejected:   m.opsRejected.Load(),
		Undos:         m.undos.Load(),
		Redos:         m.redos.Load(),
		Clears:        m.clears.Load(),
		Broadcasts:    m.broadcasts.Load(),
		DroppedFrames: m.droppedFrames.Load(),
		CursorsMuted:  m.cursorsMuted.Load(),
	}
}

// SelfStats reports the server process's own memory and CPU usage for
// the periodic telemetry line.
func SelfStats() (rssBytes uint64, cpuPercent float64, err error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0, err
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpu, nil
}
