package command

// Batch sorts a flat command sequence (as read back from the log,
// fresh or replayed) into per-kind ordered containers, the shape commit
// needs to walk in its fixed phase order. Dispatch is a type switch
// over the command's concrete type.
type Batch struct {
	Tokens            []TokenCommand
	Nodes             []NodeCommand
	Relationships     []RelationshipCommand
	RelationshipGroups []RelationshipGroupCommand
	Properties        []PropertyCommand
	SchemaRules       []SchemaRuleCommand
	NeoStore          *NeoStoreCommand
}

// NewBatch sorts cmds into a Batch.
func NewBatch(cmds []Command) *Batch {
	b := &Batch{}
	for _, cmd := range cmds {
		b.Add(cmd)
	}
	return b
}

// Add routes one command into its container.
func (b *Batch) Add(cmd Command) {
	switch c := cmd.(type) {
	case TokenCommand:
		b.Tokens = append(b.Tokens, c)
	case NodeCommand:
		b.Nodes = append(b.Nodes, c)
	case RelationshipCommand:
		b.Relationships = append(b.Relationships, c)
	case RelationshipGroupCommand:
		b.RelationshipGroups = append(b.RelationshipGroups, c)
	case PropertyCommand:
		b.Properties = append(b.Properties, c)
	case SchemaRuleCommand:
		b.SchemaRules = append(b.SchemaRules, c)
	case NeoStoreCommand:
		cp := c
		b.NeoStore = &cp
	}
}
