package nocroute

// trace.go gathers a record of every routing decision made while probes walk the network,
// for post-run inspection.  Records are grouped by probe and serialized to yaml or json.

import (
	"os"
	"strconv"

	"github.com/iti/evt/vrtime"
	"gopkg.in/yaml.v3"
)

// TraceInst is one stored trace record
type TraceInst struct {
	TraceTime string `json:"tracetime" yaml:"tracetime"`
	TraceType string `json:"tracetype" yaml:"tracetype"`
	TraceStr  string `json:"tracestr" yaml:"tracestr"`
}

// NameType is an entry of the id -> (name, type) dictionary of a trace
type NameType struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// TraceManager collects the trace records of one run.
type TraceManager struct {
	// run uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of the run
	ExpName string `json:"expname" yaml:"expname"`

	// text name associated with each node id
	NameByID map[int]NameType `json:"namebyid" yaml:"namebyid"`

	// trace records, by probe id
	Traces map[int][]TraceInst `json:"traces" yaml:"traces"`
}

// CreateTraceManager is a constructor.  When active is false every Add call is ignored,
// so callers may trace unconditionally.
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.NameByID = make(map[int]NameType)
	tm.Traces = make(map[int][]TraceInst)
	return tm
}

// Active tells the caller whether the TraceManager is in use
func (tm *TraceManager) Active() bool {
	return tm.InUse
}

// AddTrace stores trace under probe probeID
func (tm *TraceManager) AddTrace(vrt vrtime.Time, probeID int, trace TraceInst) {
	if !tm.InUse {
		return
	}
	tm.Traces[probeID] = append(tm.Traces[probeID], trace)
}

// AddName adds an element to the id -> (name,type) dictionary.  The nodes of a network
// are named once, so a repeated id is an error of the caller.
func (tm *TraceManager) AddName(id int, name string, objDesc string) {
	if !tm.InUse {
		return
	}
	if _, present := tm.NameByID[id]; present {
		panic("duplicated id in AddName")
	}
	tm.NameByID[id] = NameType{Name: name, Type: objDesc}
}

// NameNodes adds every node of space to the dictionary
func (tm *TraceManager) NameNodes(space NodeSpace) {
	for id := NodeID(0); int(id) < space.Size(); id++ {
		tm.AddName(int(id), space.Name(id), space.Kind(id).String())
	}
}

// WriteToFile stores the TraceManager to filename, as yaml or json by its extension.
// Nothing is written when the manager is not in use.
func (tm *TraceManager) WriteToFile(filename string) (bool, error) {
	if !tm.InUse {
		return false, nil
	}
	bytes, merr := marshalByExt(filename, *tm)
	if merr != nil {
		return false, merr
	}
	if err := os.WriteFile(filename, bytes, 0644); err != nil {
		return false, err
	}
	return true, nil
}

// HopTrace records one routing decision made for a probe
type HopTrace struct {
	Time     float64   `yaml:"time"`
	Ticks    int64     `yaml:"ticks"`
	Priority int64     `yaml:"priority"`
	ProbeID  int       `yaml:"probeid"`
	Router   int       `yaml:"router"`
	VNet     int       `yaml:"vnet"`
	InDir    Direction `yaml:"indir"`
	InVC     int       `yaml:"invc"`
	OutDir   Direction `yaml:"outdir"`
	Outport  int       `yaml:"outport"`
	OutVC    int       `yaml:"outvc"`

	// Choices is the number of candidates the algorithm offered
	Choices int `yaml:"choices"`
}

// Serialize renders the record as yaml
func (htr *HopTrace) Serialize() string {
	bytes, merr := yaml.Marshal(*htr)
	if merr != nil {
		panic(merr)
	}
	return string(bytes)
}

// AddHopTrace creates the record of a routing decision and stores it
func AddHopTrace(tm *TraceManager, vrt vrtime.Time, htr *HopTrace) {
	if !tm.Active() {
		return
	}
	htr.Time = vrt.Seconds()
	htr.Ticks = vrt.Ticks()
	htr.Priority = vrt.Pri()

	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)
	trcInst := TraceInst{TraceTime: traceTime, TraceType: "hop", TraceStr: htr.Serialize()}
	tm.AddTrace(vrt, htr.ProbeID, trcInst)
}
