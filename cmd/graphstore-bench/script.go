package main

import (
	"fmt"
	"os"

	"github.com/cuemby/graphstore/pkg/gstypes"
	"github.com/cuemby/graphstore/pkg/mutation"
	"gopkg.in/yaml.v3"
)

// scriptFile is the on-disk shape of a --script file: an ordered list of
// transactions, each an ordered list of mutation calls to stage before
// that transaction prepares and commits.
type scriptFile struct {
	Transactions [][]scriptOp `yaml:"transactions"`
}

// scriptOp names one mutation call and its arguments. Only the fields
// relevant to Op are read; the rest are ignored.
type scriptOp struct {
	Op       string `yaml:"op"`
	Node     int64  `yaml:"node"`
	Rel      int64  `yaml:"rel"`
	First    int64  `yaml:"first"`
	Second   int64  `yaml:"second"`
	Type     int32  `yaml:"type"`
	Label    string `yaml:"label"`
	Key      string `yaml:"key"`
	Value    any    `yaml:"value"`
	RuleKind string `yaml:"rule_kind"`
}

func loadScript(path string) (*scriptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var sf scriptFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &sf, nil
}

// idTracker tracks ids returned by create_node and create_relationship
// ops in script order, so later ops can address "the 2nd node created"
// etc. via the same fields the script already uses for explicit ids: any
// op whose Node (or First/Second) value is negative is treated as a
// 1-based back-reference into nodes instead of a literal store id (-1 =
// first created node), and a negative Rel value likewise into rels.
type idTracker struct {
	nodes []int64
	rels  []int64
}

func (t *idTracker) resolveNode(v int64) int64 {
	if v >= 0 {
		return v
	}
	idx := int(-v) - 1
	if idx < 0 || idx >= len(t.nodes) {
		return v
	}
	return t.nodes[idx]
}

func (t *idTracker) resolveRel(v int64) int64 {
	if v >= 0 {
		return v
	}
	idx := int(-v) - 1
	if idx < 0 || idx >= len(t.rels) {
		return v
	}
	return t.rels[idx]
}

// applyOp executes one scripted op against an in-flight ChangeSet. It
// resolves label/property-key/relationship-type tokens by name, creating
// them on first use.
func applyOp(cs *mutation.ChangeSet, tracker *idTracker, op scriptOp) error {
	switch op.Op {
	case "create_node":
		n, err := cs.CreateNode()
		if err != nil {
			return err
		}
		tracker.nodes = append(tracker.nodes, n.ID)
		return nil

	case "delete_node":
		return cs.DeleteNode(tracker.resolveNode(op.Node))

	case "create_relationship":
		r, err := cs.CreateRelationship(op.Type, tracker.resolveNode(op.First), tracker.resolveNode(op.Second))
		if err != nil {
			return err
		}
		tracker.rels = append(tracker.rels, r.ID)
		return nil

	case "delete_relationship":
		return cs.DeleteRelationship(tracker.resolveRel(op.Rel))

	case "add_node_property":
		key, err := cs.GetOrCreateToken(gstypes.TokenPropertyKey, op.Key)
		if err != nil {
			return err
		}
		return cs.AddNodeProperty(tracker.resolveNode(op.Node), key.ID, op.Value)

	case "change_node_property":
		key, err := cs.GetOrCreateToken(gstypes.TokenPropertyKey, op.Key)
		if err != nil {
			return err
		}
		return cs.ChangeNodeProperty(tracker.resolveNode(op.Node), key.ID, op.Value)

	case "remove_node_property":
		key, err := cs.GetOrCreateToken(gstypes.TokenPropertyKey, op.Key)
		if err != nil {
			return err
		}
		return cs.RemoveNodeProperty(tracker.resolveNode(op.Node), key.ID)

	case "add_relationship_property":
		key, err := cs.GetOrCreateToken(gstypes.TokenPropertyKey, op.Key)
		if err != nil {
			return err
		}
		return cs.AddRelationshipProperty(tracker.resolveRel(op.Rel), key.ID, op.Value)

	case "change_relationship_property":
		key, err := cs.GetOrCreateToken(gstypes.TokenPropertyKey, op.Key)
		if err != nil {
			return err
		}
		return cs.ChangeRelationshipProperty(tracker.resolveRel(op.Rel), key.ID, op.Value)

	case "remove_relationship_property":
		key, err := cs.GetOrCreateToken(gstypes.TokenPropertyKey, op.Key)
		if err != nil {
			return err
		}
		return cs.RemoveRelationshipProperty(tracker.resolveRel(op.Rel), key.ID)

	case "add_label":
		lbl, err := cs.GetOrCreateToken(gstypes.TokenLabel, op.Label)
		if err != nil {
			return err
		}
		return cs.AddLabel(tracker.resolveNode(op.Node), lbl.ID)

	case "remove_label":
		lbl, err := cs.GetOrCreateToken(gstypes.TokenLabel, op.Label)
		if err != nil {
			return err
		}
		return cs.RemoveLabel(tracker.resolveNode(op.Node), lbl.ID)

	case "create_schema_rule":
		lbl, err := cs.GetOrCreateToken(gstypes.TokenLabel, op.Label)
		if err != nil {
			return err
		}
		key, err := cs.GetOrCreateToken(gstypes.TokenPropertyKey, op.Key)
		if err != nil {
			return err
		}
		kind := gstypes.SchemaRuleIndex
		if op.RuleKind == "uniqueness" {
			kind = gstypes.SchemaRuleUniquenessConstraint
		}
		_, err = cs.CreateSchemaRule(kind, lbl.ID, key.ID)
		return err

	default:
		return fmt.Errorf("unknown script op %q", op.Op)
	}
}
