package command

import (
	"encoding/json"
	"fmt"
)

// kindTag names each concrete Command type for the JSON envelope below.
// The real logical log framework (out of scope here, per spec.md §1)
// would give every command a stable on-disk tag of its own; this is the
// minimal stand-in a caller needs to persist and replay a command
// stream through the addCommand/injectCommand hooks this package
// exposes.
type kindTag string

const (
	kindNode            kindTag = "node"
	kindRelationship    kindTag = "relationship"
	kindRelationshipGrp kindTag = "relationship_group"
	kindProperty        kindTag = "property"
	kindToken           kindTag = "token"
	kindSchemaRule      kindTag = "schema_rule"
	kindNeoStore        kindTag = "neostore"
)

type envelope struct {
	Kind    kindTag         `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeCommand serializes a single Command to its tagged JSON envelope.
func EncodeCommand(cmd Command) (json.RawMessage, error) {
	var kind kindTag
	switch cmd.(type) {
	case NodeCommand:
		kind = kindNode
	case RelationshipCommand:
		kind = kindRelationship
	case RelationshipGroupCommand:
		kind = kindRelationshipGrp
	case PropertyCommand:
		kind = kindProperty
	case TokenCommand:
		kind = kindToken
	case SchemaRuleCommand:
		kind = kindSchemaRule
	case NeoStoreCommand:
		kind = kindNeoStore
	default:
		return nil, fmt.Errorf("command: unknown command type %T", cmd)
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("command: encode %s payload: %w", kind, err)
	}
	env := envelope{Kind: kind, Payload: payload}
	return json.Marshal(env)
}

// DecodeCommand reverses EncodeCommand, dispatching on the envelope's
// tag to the concrete Command type it names.
func DecodeCommand(raw json.RawMessage) (Command, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("command: decode envelope: %w", err)
	}

	switch env.Kind {
	case kindNode:
		var c NodeCommand
		err := json.Unmarshal(env.Payload, &c)
		return c, err
	case kindRelationship:
		var c RelationshipCommand
		err := json.Unmarshal(env.Payload, &c)
		return c, err
	case kindRelationshipGrp:
		var c RelationshipGroupCommand
		err := json.Unmarshal(env.Payload, &c)
		return c, err
	case kindProperty:
		var c PropertyCommand
		err := json.Unmarshal(env.Payload, &c)
		return c, err
	case kindToken:
		var c TokenCommand
		err := json.Unmarshal(env.Payload, &c)
		return c, err
	case kindSchemaRule:
		var c SchemaRuleCommand
		err := json.Unmarshal(env.Payload, &c)
		return c, err
	case kindNeoStore:
		var c NeoStoreCommand
		err := json.Unmarshal(env.Payload, &c)
		return c, err
	default:
		return nil, fmt.Errorf("command: unknown envelope kind %q", env.Kind)
	}
}

// EncodeCommands serializes an ordered command list.
func EncodeCommands(cmds []Command) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(cmds))
	for _, c := range cmds {
		raw, err := EncodeCommand(c)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// DecodeCommands reverses EncodeCommands.
func DecodeCommands(raws []json.RawMessage) ([]Command, error) {
	out := make([]Command, 0, len(raws))
	for _, raw := range raws {
		c, err := DecodeCommand(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
