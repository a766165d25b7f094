package stuborg

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Seed is the record set the stub serves, keyed by sobject name.
//
//	sobjects:
//	  Account:
//	    - Name: Acme
//	    - Name: Globex
type Seed struct {
	SObjects map[string][]map[string]any `yaml:"sobjects"`
}

func DefaultSeed() Seed {
	return Seed{SObjects: map[string][]map[string]any{
		"Account": {
			{"Name": "Acme"},
			{"Name": "Globex"},
			{"Name": "Initech"},
			{"Name": "Umbrella"},
		},
		"Contact": {
			{"Name": "Ada Lovelace"},
			{"Name": "Grace Hopper"},
			{"Name": "Margaret Hamilton"},
		},
	}}
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var s Seed
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	if len(s.SObjects) == 0 {
		return Seed{}, fmt.Errorf("seed %s: no sobjects", path)
	}
	return s, nil
}

// normalize fills in Ids. They are derived from sobject, position and
// name so a restart serves the same Ids.
func (s Seed) normalize() map[string][]map[string]any {
	out := make(map[string][]map[string]any, len(s.SObjects))
	names := make([]string, 0, len(s.SObjects))
	for name := range s.SObjects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		recs := make([]map[string]any, 0, len(s.SObjects[name]))
		for i, r := range s.SObjects[name] {
			cp := make(map[string]any, len(r)+1)
			for k, v := range r {
				cp[k] = v
			}
			if _, ok := cp["Id"]; !ok {
				key := fmt.Sprintf("%s:%d:%v", name, i, r["Name"])
				cp["Id"] = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
			}
			recs = append(recs, cp)
		}
		out[name] = recs
	}
	return out
}
