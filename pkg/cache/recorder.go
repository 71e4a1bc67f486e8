package cache

import (
	"sync"

	"github.com/cuemby/graphstore/pkg/gstypes"
)

// PatchedRelationship is one call to PatchDeletedRelationshipNodes,
// kept verbatim for assertions.
type PatchedRelationship struct {
	RelID, FirstNode, FirstNextRel, SecondNode, SecondNextRel int64
}

// Recorder is an Invalidator that remembers every call it received, in
// order. Tests use it to assert exactly what a commit invalidated.
type Recorder struct {
	mu sync.Mutex

	RemovedNodes         []int64
	RemovedRelationships []int64
	PatchedRelationships []PatchedRelationship
	RemovedRelTypes      []int32
	AddedRelTypeTokens   []*gstypes.TokenRecord
	AddedLabelTokens     []*gstypes.TokenRecord
	AddedPropKeyTokens   []*gstypes.TokenRecord
	LabelUpdateBatches   [][]NodeLabelUpdate
	RemovedSchemaRules   []int64
	AddedSchemaRules     []*gstypes.SchemaRuleRecord
	GraphPropsCleared    int
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) RemoveNodeFromCache(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RemovedNodes = append(r.RemovedNodes, id)
}

func (r *Recorder) RemoveRelationshipFromCache(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RemovedRelationships = append(r.RemovedRelationships, id)
}

func (r *Recorder) PatchDeletedRelationshipNodes(relID, firstNode, firstNextRel, secondNode, secondNextRel int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PatchedRelationships = append(r.PatchedRelationships, PatchedRelationship{
		RelID: relID, FirstNode: firstNode, FirstNextRel: firstNextRel,
		SecondNode: secondNode, SecondNextRel: secondNextRel,
	})
}

func (r *Recorder) RemoveRelationshipTypeFromCache(id int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RemovedRelTypes = append(r.RemovedRelTypes, id)
}

func (r *Recorder) AddRelationshipTypeToken(t *gstypes.TokenRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AddedRelTypeTokens = append(r.AddedRelTypeTokens, t)
}

func (r *Recorder) AddLabelToken(t *gstypes.TokenRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AddedLabelTokens = append(r.AddedLabelTokens, t)
}

func (r *Recorder) AddPropertyKeyToken(t *gstypes.TokenRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AddedPropKeyTokens = append(r.AddedPropKeyTokens, t)
}

func (r *Recorder) ApplyLabelUpdates(updates []NodeLabelUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LabelUpdateBatches = append(r.LabelUpdateBatches, updates)
}

func (r *Recorder) RemoveSchemaRuleFromCache(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RemovedSchemaRules = append(r.RemovedSchemaRules, id)
}

func (r *Recorder) AddSchemaRule(rule *gstypes.SchemaRuleRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AddedSchemaRules = append(r.AddedSchemaRules, rule)
}

func (r *Recorder) RemoveGraphPropertiesFromCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GraphPropsCleared++
}
