// Package scheduler owns the run loop: it drains the queue, dispatches
// each popped message to the right sensor verb, reseeds periodic work
// on a cadence, and watches the metadata directory for interrupts and
// plan reloads. See DESIGN.md's Open Question (d) for how this package
// maps spec.md §4.5's Idle/Draining/Reseed diagram onto a single
// deadline-bounded queue.Pop loop.
package scheduler

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/plense/plensor-gateway/internal/artifact"
	"github.com/plense/plensor-gateway/internal/plan"
	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/queue"
	"github.com/plense/plensor-gateway/internal/sensor"
)

// testMeasureParams is the synthetic post-calibrate measurement from
// spec.md §4.5: Block, 50ms, 20-100kHz, 2 reps, never persisted.
var testMeasureParams = protocol.Params{
	DurationUS:  50000,
	StartFreqHz: 20000,
	StopFreqHz:  100000,
	Repetitions: 2,
}

// Scheduler is the single writer to the bus (via bus) and the sole
// owner of the sensor actor set and the current plan document. Only the
// queue it reads/writes is shared with other goroutines.
type Scheduler struct {
	bus         sensor.Bus
	q           *queue.Queue
	artifacts   artifact.Root
	consumer    artifact.Consumer
	logger      *log.Logger
	tz          *time.Location
	planPath    string
	metadataDir string

	// docPtr holds the current plan document. Only the scheduler
	// goroutine ever stores a new value (on plan reload); the
	// interrupt-watch goroutine only loads it, to resolve parameters for
	// interrupt messages without taking a lock on scheduler-owned state.
	docPtr atomic.Pointer[plan.Document]

	sensors     map[protocol.SensorId]*sensor.Sensor
	sensorOrder []protocol.SensorId

	lastMidnight string
}

func (s *Scheduler) currentDoc() plan.Document {
	return *s.docPtr.Load()
}

func (s *Scheduler) setDoc(doc plan.Document) {
	s.docPtr.Store(&doc)
}

// Config gathers everything New needs to build a Scheduler.
type Config struct {
	Bus         sensor.Bus
	Queue       *queue.Queue
	Artifacts   artifact.Root
	Consumer    artifact.Consumer
	Logger      *log.Logger
	TZ          *time.Location
	PlanPath    string
	MetadataDir string
	Doc         plan.Document
}

// New builds a Scheduler with one sensor actor per doc.Sensors entry.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		bus:         cfg.Bus,
		q:           cfg.Queue,
		artifacts:   cfg.Artifacts,
		consumer:    cfg.Consumer,
		logger:      cfg.Logger,
		tz:          cfg.TZ,
		planPath:    cfg.PlanPath,
		metadataDir: cfg.MetadataDir,
		sensors:     map[protocol.SensorId]*sensor.Sensor{},
	}
	s.setDoc(cfg.Doc)
	s.rebuildSensors(cfg.Doc)
	return s
}

func (s *Scheduler) rebuildSensors(doc plan.Document) {
	order := append([]protocol.SensorId(nil), doc.Sensors...)
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	seen := map[protocol.SensorId]bool{}
	for _, id := range order {
		seen[id] = true
		if _, ok := s.sensors[id]; !ok {
			variant := plan.VariantForSensor(doc, id)
			damping := plan.Resolve(doc, id, plan.NameSetDamping).Damping
			s.sensors[id] = sensor.New(id, variant, damping)
		}
	}
	for id := range s.sensors {
		if !seen[id] {
			delete(s.sensors, id)
		}
	}
	s.sensorOrder = order
}

func (s *Scheduler) responsiveIDs() []protocol.SensorId {
	var ids []protocol.SensorId
	for _, id := range s.sensorOrder {
		if sn, ok := s.sensors[id]; ok && sn.Responsive {
			ids = append(ids, id)
		}
	}
	return ids
}
