package nocroute

// desc-topo.go has the serializable description of an interconnect: its endpoints,
// routers, and the links between them, plus the network-wide parameters the routing
// units consult.  Descriptions are read from and written to yaml or json files.

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

// An ExtLinkDesc describes a bidirectional connection between an endpoint and a router.
// Topology compilation turns it into two directed single-hop edges.
type ExtLinkDesc struct {
	Endpoint int `json:"endpoint" yaml:"endpoint"`
	Router   int `json:"router" yaml:"router"`
	Weight   int `json:"weight" yaml:"weight"`
	Latency  int `json:"latency" yaml:"latency"`

	// VNets lists the virtual networks the link serves, empty means all of them
	VNets []int `json:"vnets,omitempty" yaml:"vnets,omitempty"`

	// VCWeights is the per-virtual-channel priority list. Empty lets compilation
	// supply the endpoint defaults.
	VCWeights []int `json:"vcweights,omitempty" yaml:"vcweights,omitempty"`
}

// An IntLinkDesc describes a directed connection from one router to another
type IntLinkDesc struct {
	Src        int    `json:"src" yaml:"src"`
	Dst        int    `json:"dst" yaml:"dst"`
	SrcOutport string `json:"srcoutport" yaml:"srcoutport"`
	DstInport  string `json:"dstinport" yaml:"dstinport"`
	Weight     int    `json:"weight" yaml:"weight"`
	Latency    int    `json:"latency" yaml:"latency"`
	VNets      []int  `json:"vnets,omitempty" yaml:"vnets,omitempty"`
	VCWeights  []int  `json:"vcweights,omitempty" yaml:"vcweights,omitempty"`
}

// A RouterDesc carries the per-router attributes that routing algorithms consult
type RouterDesc struct {
	ID int `json:"id" yaml:"id"`

	// LongLinkID is the router at the far end of this router's express link, -1 if none
	LongLinkID int `json:"longlinkid" yaml:"longlinkid"`
}

// routerDescFields keeps RouterDesc's fields without its decoding methods
type routerDescFields RouterDesc

// UnmarshalYAML decodes a router entry, leaving LongLinkID at -1 when the entry omits it
func (rd *RouterDesc) UnmarshalYAML(node *yaml.Node) error {
	fields := routerDescFields{LongLinkID: -1}
	if err := node.Decode(&fields); err != nil {
		return err
	}
	*rd = RouterDesc(fields)
	return nil
}

// UnmarshalJSON is UnmarshalYAML for json descriptions
func (rd *RouterDesc) UnmarshalJSON(data []byte) error {
	fields := routerDescFields{LongLinkID: -1}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*rd = RouterDesc(fields)
	return nil
}

// NetworkDesc holds everything needed to compile a topology and build its routing units
type NetworkDesc struct {
	Name         string `json:"name" yaml:"name"`
	NumEndpoints int    `json:"numendpoints" yaml:"numendpoints"`
	NumRouters   int    `json:"numrouters" yaml:"numrouters"`
	NumVNets     int    `json:"numvnets" yaml:"numvnets"`
	VCsPerVNet   int    `json:"vcspervnet" yaml:"vcspervnet"`

	// mesh geometry; Depth is only consulted by the 3-D algorithm
	Rows  int `json:"rows" yaml:"rows"`
	Cols  int `json:"cols" yaml:"cols"`
	Depth int `json:"depth,omitempty" yaml:"depth,omitempty"`

	OrderedVNets     []int  `json:"orderedvnets,omitempty" yaml:"orderedvnets,omitempty"`
	RoutingAlgorithm string `json:"routingalgorithm" yaml:"routingalgorithm"`

	// CycleSeconds converts link latencies (in cycles) into simulation time
	CycleSeconds float64 `json:"cycleseconds" yaml:"cycleseconds"`

	Routers  []RouterDesc  `json:"routers,omitempty" yaml:"routers,omitempty"`
	ExtLinks []ExtLinkDesc `json:"extlinks" yaml:"extlinks"`
	IntLinks []IntLinkDesc `json:"intlinks" yaml:"intlinks"`
}

// CreateNetworkDesc is a constructor
func CreateNetworkDesc(name string, numEndpoints, numRouters, numVNets int) *NetworkDesc {
	nd := new(NetworkDesc)
	nd.Name = name
	nd.NumEndpoints = numEndpoints
	nd.NumRouters = numRouters
	nd.NumVNets = numVNets
	nd.ExtLinks = make([]ExtLinkDesc, 0)
	nd.IntLinks = make([]IntLinkDesc, 0)
	nd.Routers = make([]RouterDesc, 0)

	return nd
}

// AddExtLink connects endpoint ep to router rtr
func (nd *NetworkDesc) AddExtLink(ep, rtr, weight, latency int) *ExtLinkDesc {
	nd.ExtLinks = append(nd.ExtLinks, ExtLinkDesc{Endpoint: ep, Router: rtr, Weight: weight, Latency: latency})
	return &nd.ExtLinks[len(nd.ExtLinks)-1]
}

// AddIntLink adds a directed link from router src to router dst
func (nd *NetworkDesc) AddIntLink(src, dst int, srcOutport, dstInport Direction, weight, latency int) *IntLinkDesc {
	nd.IntLinks = append(nd.IntLinks, IntLinkDesc{Src: src, Dst: dst,
		SrcOutport: srcOutport.String(), DstInport: dstInport.String(), Weight: weight, Latency: latency})
	return &nd.IntLinks[len(nd.IntLinks)-1]
}

// Normalize fills in the defaults for fields a description left at zero
func (nd *NetworkDesc) Normalize() {
	if nd.NumVNets == 0 {
		nd.NumVNets = 1
	}
	if nd.VCsPerVNet == 0 {
		nd.VCsPerVNet = 1
	}
	if nd.CycleSeconds == 0 {
		nd.CycleSeconds = 1e-9
	}
	if nd.Rows == 0 && nd.Cols == 0 {
		nd.Rows, nd.Cols = 1, nd.NumRouters
	}
	if nd.RoutingAlgorithm == "" {
		nd.RoutingAlgorithm = TableRouting.String()
	}
	for idx := range nd.ExtLinks {
		if nd.ExtLinks[idx].Weight == 0 {
			nd.ExtLinks[idx].Weight = 1
		}
		if nd.ExtLinks[idx].Latency == 0 {
			nd.ExtLinks[idx].Latency = 1
		}
	}
	for idx := range nd.IntLinks {
		if nd.IntLinks[idx].Weight == 0 {
			nd.IntLinks[idx].Weight = 1
		}
		if nd.IntLinks[idx].Latency == 0 {
			nd.IntLinks[idx].Latency = 1
		}
	}
}

// LongLinkOf returns the express-link partner of router rtr, -1 if it has none
func (nd *NetworkDesc) LongLinkOf(rtr int) int {
	for _, rd := range nd.Routers {
		if rd.ID == rtr {
			return rd.LongLinkID
		}
	}
	return -1
}

// EndpointRouter returns the router endpoint ep is attached to, -1 if it is unattached
func (nd *NetworkDesc) EndpointRouter(ep int) int {
	for _, el := range nd.ExtLinks {
		if el.Endpoint == ep {
			return el.Router
		}
	}
	return -1
}

// WriteToFile serializes the NetworkDesc and writes to the file whose name is given as an input argument.
// Extension of the file name selects whether serialization is to json or to yaml format.
func (nd *NetworkDesc) WriteToFile(filename string) error {
	bytes, merr := marshalByExt(filename, *nd)
	if merr != nil {
		return merr
	}

	return os.WriteFile(filename, bytes, 0644)
}

// ReadNetworkDesc deserializes a slice of bytes into a NetworkDesc.  If the input arg of bytes
// is empty, the file whose name is given as an argument is read.  Error returned if
// any part of the process generates the error.
func ReadNetworkDesc(filename string, useYAML bool, dict []byte) (*NetworkDesc, error) {
	var err error

	// read from the file only if the byte slice is empty
	if len(dict) == 0 {
		dict, err = readDescFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := NetworkDesc{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}
	if err != nil {
		return nil, err
	}
	example.Normalize()

	return &example, nil
}

// A NetworkDescDict holds instances of NetworkDesc structures, in a map whose key is
// a name for the network.  Used to store pre-built instances of networks
type NetworkDescDict struct {
	DictName string                 `json:"dictname" yaml:"dictname"`
	Descs    map[string]NetworkDesc `json:"descs" yaml:"descs"`
}

// CreateNetworkDescDict is a constructor. Saves the dictionary name, initializes the map.
func CreateNetworkDescDict(name string) *NetworkDescDict {
	ndd := new(NetworkDescDict)
	ndd.DictName = name
	ndd.Descs = make(map[string]NetworkDesc)

	return ndd
}

// AddNetworkDesc includes a NetworkDesc into the dictionary, optionally returning an error
// if a NetworkDesc with the same name has already been included
func (ndd *NetworkDescDict) AddNetworkDesc(nd *NetworkDesc, overwrite bool) error {
	if !overwrite {
		_, present := ndd.Descs[nd.Name]
		if present {
			return fmt.Errorf("attempt to overwrite NetworkDesc %s in NetworkDescDict", nd.Name)
		}
	}
	ndd.Descs[nd.Name] = *nd

	return nil
}

// RecoverNetworkDesc returns a copy (if one exists) of the NetworkDesc with the given name
func (ndd *NetworkDescDict) RecoverNetworkDesc(name string) (*NetworkDesc, bool) {
	nd, present := ndd.Descs[name]
	if present {
		return &nd, true
	}

	return nil, false
}

// WriteToFile serializes the NetworkDescDict, format chosen by the file extension
func (ndd *NetworkDescDict) WriteToFile(filename string) error {
	bytes, merr := marshalByExt(filename, *ndd)
	if merr != nil {
		return merr
	}

	return os.WriteFile(filename, bytes, 0644)
}

// ReadNetworkDescDict deserializes a NetworkDescDict from dict, or from the named file when dict is empty
func ReadNetworkDescDict(filename string, useYAML bool, dict []byte) (*NetworkDescDict, error) {
	var err error
	if len(dict) == 0 {
		dict, err = readDescFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := NetworkDescDict{}
	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}
	if err != nil {
		return nil, err
	}
	for name, nd := range example.Descs {
		nd.Normalize()
		example.Descs[name] = nd
	}

	return &example, nil
}

// IsYAMLFile reports whether the file extension selects the yaml format
func IsYAMLFile(filename string) bool {
	pathExt := path.Ext(filename)
	return pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml"
}

func marshalByExt(filename string, v any) ([]byte, error) {
	pathExt := path.Ext(filename)
	switch {
	case IsYAMLFile(filename):
		return yaml.Marshal(v)
	case pathExt == ".json" || pathExt == ".JSON":
		return json.MarshalIndent(v, "", "\t")
	}
	return nil, fmt.Errorf("file %s has neither a yaml nor a json extension", filename)
}

func readDescFile(filename string) ([]byte, error) {
	fileInfo, err := os.Stat(filename)
	if os.IsNotExist(err) || (err == nil && fileInfo.IsDir()) {
		return nil, fmt.Errorf("network description %s does not exist or cannot be read", filename)
	}
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filename)
}
